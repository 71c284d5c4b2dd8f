package graphic

// Skills is the set of properties a graphic (or tool) lets the user edit.
type Skills uint8

const (
	SkillColor Skills = 1 << iota
	SkillLineWidth
	SkillAngle
	SkillFont
	SkillCanvasBackground
)

// Has reports whether all of o are present.
func (s Skills) Has(o Skills) bool { return s&o == o }

// SkillsOf returns what can be edited on graphics of kind k.
func SkillsOf(k Kind) Skills {
	switch k {
	case KindRectangle, KindEllipse:
		return SkillColor | SkillLineWidth | SkillAngle
	case KindFilledRectangle:
		return SkillColor | SkillAngle
	case KindLine, KindArrow, KindPolyLine, KindCount:
		return SkillColor | SkillLineWidth
	case KindText:
		return SkillColor | SkillFont | SkillAngle
	case KindImage:
		return SkillAngle
	}
	return 0
}
