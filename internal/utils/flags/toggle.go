package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValueConstant   = "true"
	toggleFalseCanonicalValueConstant  = "false"
	toggleInvalidValueTemplateConstant = "invalid toggle value %q"
	toggleEnabledPlaceholderConstant   = "<YES|no>"
	toggleDisabledPlaceholderConstant  = "<yes|NO>"
	toggleFlagTypeNameConstant         = "bool"
	longFlagPrefixConstant             = "--"
	shortFlagPrefixConstant            = "-"
	flagValueSeparatorConstant         = "="
	argumentTerminatorConstant         = "--"
	toggleUsageTemplateConstant        = "`%s` %s"
	toggleUsageBareTemplateConstant    = "`%s`"
	shorthandLengthConstant            = 1
)

// toggleLiteralValues maps every accepted spelling to its boolean meaning.
var toggleLiteralValues = map[string]bool{
	toggleTrueCanonicalValueConstant:  true,
	toggleFalseCanonicalValueConstant: false,
	"yes":                             true,
	"no":                              false,
	"on":                              true,
	"off":                             false,
	"1":                               true,
	"0":                               false,
	"t":                               true,
	"f":                               false,
	"y":                               true,
	"n":                               false,
}

// registeredToggleFlags tracks toggle names and shorthands across commands so
// NormalizeToggleArguments only rewrites arguments belonging to toggles.
var registeredToggleFlags = struct {
	mutex      sync.RWMutex
	names      map[string]struct{}
	shorthands map[string]struct{}
}{
	names:      map[string]struct{}{},
	shorthands: map[string]struct{}{},
}

// toggleFlagValue implements pflag.Value for yes/no style boolean flags.
type toggleFlagValue struct {
	enabled bool
	target  *bool
}

// Set parses the raw spelling and propagates the result to the bound target.
func (value *toggleFlagValue) Set(rawValue string) error {
	spelling := strings.ToLower(strings.TrimSpace(rawValue))
	if len(spelling) == 0 {
		spelling = toggleTrueCanonicalValueConstant
	}

	parsedValue, spellingKnown := toggleLiteralValues[spelling]
	if !spellingKnown {
		return fmt.Errorf(toggleInvalidValueTemplateConstant, rawValue)
	}

	value.enabled = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleFlagValue) String() string {
	if value != nil && value.enabled {
		return toggleTrueCanonicalValueConstant
	}
	return toggleFalseCanonicalValueConstant
}

func (value *toggleFlagValue) Type() string {
	return toggleFlagTypeNameConstant
}

// AddToggleFlag registers a boolean flag accepting yes/no style values. The
// bare flag means true, and "--flag no" style spellings are supported once the
// argument list passes through NormalizeToggleArguments.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	if target != nil {
		*target = defaultValue
	}
	toggleValue := &toggleFlagValue{enabled: defaultValue, target: target}
	flagSet.VarP(toggleValue, name, shorthand, usage)

	registeredFlag := flagSet.Lookup(name)
	if registeredFlag == nil {
		return
	}
	registeredFlag.NoOptDefVal = toggleTrueCanonicalValueConstant
	registeredFlag.Usage = formatToggleUsage(usage, defaultValue)

	registeredToggleFlags.mutex.Lock()
	registeredToggleFlags.names[name] = struct{}{}
	if len(shorthand) > 0 {
		registeredToggleFlags.shorthands[shorthand] = struct{}{}
	}
	registeredToggleFlags.mutex.Unlock()
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleDisabledPlaceholderConstant
	if defaultValue {
		placeholder = toggleEnabledPlaceholderConstant
	}
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(toggleUsageBareTemplateConstant, placeholder)
	}
	return fmt.Sprintf(toggleUsageTemplateConstant, placeholder, trimmedDescription)
}

// NormalizeToggleArguments rewrites "--flag value" into "--flag=value" for
// registered toggle flags so pflag treats the value as belonging to the flag.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalizedArguments := make([]string, 0, len(arguments))
	argumentIndex := 0
	for argumentIndex < len(arguments) {
		currentArgument := arguments[argumentIndex]
		if currentArgument == argumentTerminatorConstant {
			normalizedArguments = append(normalizedArguments, arguments[argumentIndex:]...)
			break
		}

		if !referencesToggleFlag(currentArgument) || strings.Contains(currentArgument, flagValueSeparatorConstant) {
			normalizedArguments = append(normalizedArguments, currentArgument)
			argumentIndex++
			continue
		}

		followingIndex := argumentIndex + 1
		if followingIndex >= len(arguments) || !isToggleLiteral(arguments[followingIndex]) {
			normalizedArguments = append(normalizedArguments, currentArgument)
			argumentIndex++
			continue
		}

		normalizedArguments = append(normalizedArguments, currentArgument+flagValueSeparatorConstant+arguments[followingIndex])
		argumentIndex += 2
	}

	return normalizedArguments
}

// isToggleLiteral reports whether the argument spells one of the accepted
// toggle values, so positionals after a bare toggle flag stay untouched.
func isToggleLiteral(argument string) bool {
	_, literalKnown := toggleLiteralValues[strings.ToLower(strings.TrimSpace(argument))]
	return literalKnown
}

// referencesToggleFlag reports whether the argument names a registered toggle
// flag, by long name or single-letter shorthand.
func referencesToggleFlag(argument string) bool {
	registeredToggleFlags.mutex.RLock()
	defer registeredToggleFlags.mutex.RUnlock()

	if strings.HasPrefix(argument, longFlagPrefixConstant) {
		flagName, _, _ := strings.Cut(strings.TrimPrefix(argument, longFlagPrefixConstant), flagValueSeparatorConstant)
		_, flagKnown := registeredToggleFlags.names[flagName]
		return flagKnown
	}

	if strings.HasPrefix(argument, shortFlagPrefixConstant) {
		shorthand, _, _ := strings.Cut(strings.TrimPrefix(argument, shortFlagPrefixConstant), flagValueSeparatorConstant)
		if len(shorthand) != shorthandLengthConstant {
			return false
		}
		_, shorthandKnown := registeredToggleFlags.shorthands[shorthand]
		return shorthandKnown
	}

	return false
}
