package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderTemplateConstant = "<%s>"
	choiceSeparatorConstant           = "|"
	choiceUsageTemplateConstant       = "`%s` %s"
	choiceUsageBareTemplateConstant   = "`%s`"
)

// FormatChoiceUsage builds flag usage text listing the accepted values, with
// the default value rendered in upper case inside the placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))

	renderedChoices := make([]string, 0, len(choices))
	seenChoices := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		normalizedChoice := strings.ToLower(trimmedChoice)
		if len(trimmedChoice) == 0 {
			continue
		}
		if _, alreadyRendered := seenChoices[normalizedChoice]; alreadyRendered {
			continue
		}
		seenChoices[normalizedChoice] = struct{}{}

		if normalizedChoice == normalizedDefault {
			renderedChoices = append(renderedChoices, strings.ToUpper(trimmedChoice))
			continue
		}
		renderedChoices = append(renderedChoices, trimmedChoice)
	}

	placeholder := fmt.Sprintf(choicePlaceholderTemplateConstant, strings.Join(renderedChoices, choiceSeparatorConstant))
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(choiceUsageBareTemplateConstant, placeholder)
	}
	return fmt.Sprintf(choiceUsageTemplateConstant, placeholder, trimmedDescription)
}
