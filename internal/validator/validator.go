package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Severity ranks an issue. Only errors fail validation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Kind classifies an issue.
type Kind string

const (
	KindMissingRoot  Kind = "missing_root"
	KindDanglingNext Kind = "dangling_next"
	KindDeadEnd      Kind = "dead_end_option"
	KindEmptyOptions Kind = "empty_options"
	KindEmptyLevel   Kind = "empty_level"
	KindShadowed     Kind = "shadowed_option"
	KindUnreachable  Kind = "unreachable_level"
)

// Issue is a single finding about a tree.
type Issue struct {
	Severity Severity `json:"severity"`
	Kind     Kind     `json:"kind"`
	Level    string   `json:"level,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.Level == "" {
		return fmt.Sprintf("[%s] %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Level, i.Message)
}

// Report collects issues in a stable order: root first, then levels by id.
type Report struct {
	Issues []Issue `json:"issues"`
}

// Errors returns the error-severity issues.
func (r Report) Errors() []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}

// Err summarizes the error-severity issues, or returns nil.
func (r Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, issue := range errs {
		lines[i] = issue.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(lines, "\n- "))
}

// ValidateTree checks for broken links and unreachable levels starting from the root.
func ValidateTree(tree *domain.ContentTree) Report {
	var report Report
	add := func(sev Severity, kind Kind, level, format string, args ...any) {
		report.Issues = append(report.Issues, Issue{
			Severity: sev,
			Kind:     kind,
			Level:    level,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if tree == nil || !tree.Has(tree.Root) {
		root := ""
		if tree != nil {
			root = tree.Root
		}
		add(SeverityError, KindMissingRoot, "", "root level %q not found", root)
		if tree == nil {
			return report
		}
	}

	reachable := crawl(tree)

	for _, id := range tree.IDs() {
		level, _ := tree.Lookup(id)

		if level.Answer == "" && level.Question == "" && len(level.Options) == 0 {
			add(SeverityWarning, KindEmptyLevel, id, "level has no answer, question or options")
		}
		if level.Options != nil && len(level.Options) == 0 {
			add(SeverityWarning, KindEmptyOptions, id, "options list is empty; typed input gets the no-options reply")
		}

		for i, opt := range level.Options {
			switch {
			case !opt.HasNext():
				add(SeverityWarning, KindDeadEnd, id, "option %q has no next level", opt.Text)
			case !tree.Has(opt.Next):
				add(SeverityError, KindDanglingNext, id, "option %q points to missing level %q", opt.Text, opt.Next)
			}
			if by, shadowed := shadowedBy(level.Options[:i], opt); shadowed {
				add(SeverityWarning, KindShadowed, id, "typing %q selects the earlier option %q", opt.Text, by.Text)
			}
		}

		if !reachable[id] && id != tree.Root {
			add(SeverityWarning, KindUnreachable, id, "level is not reachable from root %q", tree.Root)
		}
	}

	return report
}

// crawl returns the levels reachable from the root through option links.
func crawl(tree *domain.ContentTree) map[string]bool {
	visited := make(map[string]bool)
	queue := []string{tree.Root}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		level, found := tree.Lookup(current)
		if !found {
			continue
		}
		visited[current] = true

		for _, opt := range level.Options {
			if opt.HasNext() && !visited[opt.Next] {
				queue = append(queue, opt.Next)
			}
		}
	}
	return visited
}

// shadowedBy reports the first earlier option whose label contains opt's full label.
func shadowedBy(earlier []domain.Option, opt domain.Option) (domain.Option, bool) {
	label := strings.ToLower(strings.TrimSpace(opt.Text))
	if label == "" {
		return domain.Option{}, false
	}
	for _, prev := range earlier {
		if strings.Contains(strings.ToLower(prev.Text), label) {
			return prev, true
		}
	}
	return domain.Option{}, false
}

// Unreachable lists unreachable level ids, sorted.
func Unreachable(tree *domain.ContentTree) []string {
	reachable := crawl(tree)
	var out []string
	for _, id := range tree.IDs() {
		if !reachable[id] && id != tree.Root {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
