package runner_test

import (
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
)

func newTestEngine() *runtime.Engine {
	return runtime.NewEngine(domain.NewContentTree("level1", map[string]domain.Level{
		"level1": {
			Answer:   "Welcome!",
			Question: "Pick a topic.",
			Options: []domain.Option{
				{Text: "Courses", Next: "courses"},
				{Text: "Fees", Next: "fees"},
			},
		},
		"courses": {Answer: "We offer aviation courses."},
		"fees":    {Answer: "Fees vary by program."},
	}))
}
