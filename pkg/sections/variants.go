package sections

import "github.com/dtnitsch/mooc-renderer/models"

// Lesson renders leaf items.
type Lesson struct{}

func (Lesson) Keys() []string {
	return []string{
		models.SectionLearningGoals,
		models.SectionVideo,
		models.SectionScript,
		models.SectionQuiz,
		models.SectionFurtherReading,
	}
}

func (Lesson) Body(key string, node *models.StructureNode, b *Builder) (string, bool) {
	item := node.Item
	switch key {
	case models.SectionScript:
		if !b.Exists(item.Script()) {
			return "", false
		}
		return b.Transclusion(item.Script()), true
	case models.SectionQuiz:
		if !b.Exists(item.Quiz()) {
			return "", false
		}
		return b.Transclusion(item.Quiz()), true
	}
	return commonBody(key, item, b)
}

// Unit renders items grouping lessons.
type Unit struct{}

func (Unit) Keys() []string {
	return []string{
		models.SectionLearningGoals,
		models.SectionVideo,
		models.SectionChildren,
		models.SectionFurtherReading,
	}
}

func (Unit) Body(key string, node *models.StructureNode, b *Builder) (string, bool) {
	if key == models.SectionChildren {
		if len(node.Children) == 0 {
			return "", false
		}
		return b.ChildList(node.Children), true
	}
	return commonBody(key, node.Item, b)
}

func commonBody(key string, item *models.Item, b *Builder) (string, bool) {
	switch key {
	case models.SectionLearningGoals:
		if len(item.LearningGoals) == 0 {
			return "", false
		}
		return b.OrderedList(item.LearningGoals), true
	case models.SectionVideo:
		if item.Video == "" {
			return "", false
		}
		return b.Video(item.Video), true
	case models.SectionFurtherReading:
		if len(item.FurtherReading) == 0 {
			return "", false
		}
		return b.OrderedList(item.FurtherReading), true
	}
	return "", false
}
