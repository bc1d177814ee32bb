package domain

import "fmt"

type CheckStatus string

const (
	CheckPass CheckStatus = "PASS"
	CheckWarn CheckStatus = "WARN"
	CheckFail CheckStatus = "FAIL"
)

// Finding is the outcome of a single deployment check.
type Finding struct {
	Check  string
	Status CheckStatus
	Reason string
}

func Pass(check string) Finding {
	return Finding{Check: check, Status: CheckPass}
}

func Warn(check, format string, args ...interface{}) Finding {
	return Finding{Check: check, Status: CheckWarn, Reason: fmt.Sprintf(format, args...)}
}

func Fail(check, format string, args ...interface{}) Finding {
	return Finding{Check: check, Status: CheckFail, Reason: fmt.Sprintf(format, args...)}
}

// Report aggregates the findings of one verification run.
type Report struct {
	Findings []Finding
}

func (r *Report) Add(f Finding) {
	r.Findings = append(r.Findings, f)
}

func (r *Report) Passed() bool {
	for _, f := range r.Findings {
		if f.Status == CheckFail {
			return false
		}
	}
	return true
}

func (r *Report) Failures() []Finding {
	var failed []Finding
	for _, f := range r.Findings {
		if f.Status == CheckFail {
			failed = append(failed, f)
		}
	}
	return failed
}
