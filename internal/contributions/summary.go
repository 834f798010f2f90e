package contributions

import "fmt"

const (
	summaryTemplateConstant       = "Person %s directly authored %d commits and co-authored %d commits to %s"
	allTimeSuffixConstant         = " in all time."
	betweenSuffixTemplateConstant = " between %s and %s."
	afterSuffixTemplateConstant   = " after %s."
	beforeSuffixTemplateConstant  = " before %s."
)

// FormatSummary renders the sentence printed by the contributions command.
func FormatSummary(person string, repositoryName string, counts Counts, dateRange DateRange) string {
	sentence := fmt.Sprintf(summaryTemplateConstant, person, counts.Authored, counts.CoAuthored, repositoryName)
	switch {
	case len(dateRange.After) > 0 && len(dateRange.Before) > 0:
		return sentence + fmt.Sprintf(betweenSuffixTemplateConstant, dateRange.After, dateRange.Before)
	case len(dateRange.After) > 0:
		return sentence + fmt.Sprintf(afterSuffixTemplateConstant, dateRange.After)
	case len(dateRange.Before) > 0:
		return sentence + fmt.Sprintf(beforeSuffixTemplateConstant, dateRange.Before)
	default:
		return sentence + allTimeSuffixConstant
	}
}
