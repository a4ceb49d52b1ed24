package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/depbump/internal/fleet"
	"github.com/temirov/depbump/internal/manifest"
)

const (
	compareUseConstant                   = "compare <package>"
	compareShortDescriptionConstant      = "Show the package's declared version in every repository"
	compareLongDescriptionConstant       = "compare reads each configured repository's manifest and prints the version declared for the package, making version drift across the fleet visible."
	compareExpectedArgumentCountConstant = 1
	compareEntryTemplateConstant         = "%s\t%s (%s)\n"
	compareMissingTemplateConstant       = "%s\tNot found\n"
	compareUnreadableTemplateConstant    = "%s\tmanifest unreadable: %v\n"
	compareEmptyFleetNoticeConstant      = "No repositories configured.\n"
	compareBlankPackageMessageConstant   = "package name must not be blank"
)

// CompareCommandBuilder assembles the report compare command.
type CompareCommandBuilder struct {
	LoggerProvider          LoggerProvider
	FleetConfigPathProvider func() string
	Store                   *fleet.Store
}

// Build constructs the report compare command.
func (builder *CompareCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   compareUseConstant,
		Short: compareShortDescriptionConstant,
		Long:  compareLongDescriptionConstant,
		Args:  cobra.ExactArgs(compareExpectedArgumentCountConstant),
		RunE:  builder.run,
	}

	return command, nil
}

func (builder *CompareCommandBuilder) run(command *cobra.Command, arguments []string) error {
	packageName := strings.TrimSpace(arguments[0])
	if len(packageName) == 0 {
		return errors.New(compareBlankPackageMessageConstant)
	}

	store, storeError := resolveStore(builder.Store, builder.FleetConfigPathProvider)
	if storeError != nil {
		return storeError
	}

	configuration, loadError := store.Load()
	if loadError != nil {
		return loadError
	}

	if len(configuration.Repositories) == 0 {
		fmt.Fprint(command.OutOrStdout(), compareEmptyFleetNoticeConstant)
		return nil
	}

	for _, repositoryReference := range configuration.Repositories {
		document, documentError := manifest.LoadRepositoryDocument(repositoryReference.Path)
		if documentError != nil {
			fmt.Fprintf(command.OutOrStdout(), compareUnreadableTemplateConstant, repositoryReference.Path, documentError)
			continue
		}

		declaredVersion, dependencyClass, dependencyFound := document.DependencyVersion(packageName)
		if !dependencyFound {
			fmt.Fprintf(command.OutOrStdout(), compareMissingTemplateConstant, repositoryReference.Path)
			continue
		}

		fmt.Fprintf(command.OutOrStdout(), compareEntryTemplateConstant, repositoryReference.Path, declaredVersion, dependencyClass.SectionKey())
	}

	return nil
}
