package rules

import (
	"fmt"
	"strings"
)

// FailureCode identifies which resolution step rejected a filename.
type FailureCode string

const (
	FailNone                FailureCode = ""
	FailNoProjectMatch      FailureCode = "NO_PROJECT_MATCH"
	FailMissingDiffNumber   FailureCode = "MISSING_DIFF_NUMBER"
	FailMalformedDiffNumber FailureCode = "MALFORMED_DIFF_NUMBER"
	FailNoRuleForDiffNumber FailureCode = "NO_RULE_FOR_DIFF_NUMBER"
	FailIncompleteRule      FailureCode = "INCOMPLETE_RULE"
)

// Result is the outcome of resolving one filename.
type Result struct {
	NewName string      `json:"new_name"`
	Status  Status      `json:"status"`
	Message string      `json:"message,omitempty"`
	Failure FailureCode `json:"failure,omitempty"`
}

// Diagnostic placeholders shown in place of a generated name. The exact
// strings are part of the output contract.
const (
	placeholderNoProject   = "[无匹配项目]"
	placeholderMissingDiff = "[缺少差分号]"
)

// Resolve classifies originalName against the project code and diff rule
// tables and, on success, synthesizes the canonical output name:
//
//	{date}_{code.FullName}+{rule.FullName}_{rule.Lang}_{rule.Abbr}_1080x1920{ext}
//
// It is pure: no I/O, no shared state, and identical inputs always yield the
// identical Result. Callers re-run it over the whole working set after any
// table edit.
//
// Matching is first-match in slice order, case-sensitive. Diff numbers are
// compared as strings, so a rule keyed "02" does not serve the token "2".
func Resolve(date string, codes []ProjectCode, diffRules []DiffRule, originalName string) Result {
	stem, ext := SplitExt(originalName)

	var matched *ProjectCode
	for i := range codes {
		if codes[i].Code != "" && strings.HasPrefix(stem, codes[i].Code) {
			matched = &codes[i]
			break
		}
	}
	if matched == nil {
		return failure(FailNoProjectMatch, placeholderNoProject, "no matching project code")
	}

	remaining := stem[len(matched.Code):]
	// One separator between code and diff number is tolerated.
	if strings.HasPrefix(remaining, "-") {
		remaining = remaining[1:]
	}
	if remaining == "" {
		return failure(FailMissingDiffNumber, placeholderMissingDiff, "missing diff number")
	}
	if !isDigits(remaining) {
		return failure(FailMalformedDiffNumber,
			fmt.Sprintf("[差分号格式错误: %s]", remaining),
			fmt.Sprintf("diff number %q must be numeric", remaining))
	}

	var rule *DiffRule
	for i := range diffRules {
		if diffRules[i].DiffNum == remaining {
			rule = &diffRules[i]
			break
		}
	}
	if rule == nil {
		return failure(FailNoRuleForDiffNumber,
			fmt.Sprintf("[差分号%s无规则]", remaining),
			fmt.Sprintf("no rule for diff number %s", remaining))
	}
	if !rule.Complete() {
		return failure(FailIncompleteRule,
			fmt.Sprintf("[差分号%s规则不完整]", remaining),
			fmt.Sprintf("rule for diff number %s is incomplete", remaining))
	}

	newName := fmt.Sprintf("%s_%s+%s_%s_%s_1080x1920%s",
		date, matched.FullName, rule.FullName, rule.Lang, rule.Abbr, ext)

	return Result{NewName: newName, Status: StatusReady}
}

// SplitExt splits a filename into stem and extension at the last dot. The
// extension keeps its leading dot; a name without one (or with only a
// leading dot) has an empty extension.
func SplitExt(name string) (stem, ext string) {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return name, ""
	}
	return name[:idx], name[idx:]
}

// failure builds an error Result. Placeholders never carry the extension.
func failure(code FailureCode, placeholder, message string) Result {
	return Result{
		NewName: placeholder,
		Status:  StatusError,
		Message: message,
		Failure: code,
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
