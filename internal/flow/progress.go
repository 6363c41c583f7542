package flow

import "github.com/petrijr/onboard/pkg/api"

// progressPercent computes floor(100 * completedGlobalIndex /
// totalQuestions): the question counts of all sections strictly before
// the current one, plus the current question index. A jump to an
// earlier section legitimately decreases it.
func progressPercent(s *api.Schema, fs api.FlowState) int {
	total := s.TotalQuestions()
	if total == 0 {
		return 0
	}

	done := 0
	for i := 0; i < fs.SectionIndex && i < len(s.Sections); i++ {
		done += len(s.Sections[i].Questions)
	}
	if fs.SectionIndex >= len(s.Sections) {
		done = total
	} else {
		done += fs.QuestionIndex
		if done > total {
			done = total
		}
	}

	return 100 * done / total
}
