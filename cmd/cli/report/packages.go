package report

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/depbump/internal/fleet"
	"github.com/temirov/depbump/internal/manifest"
)

const (
	packagesUseConstant                     = "packages"
	packagesShortDescriptionConstant        = "List every dependency declared by the fleet's manifests"
	packagesLongDescriptionConstant         = "packages prints the dependencies each configured repository declares, grouped by repository. Use --repo to limit output to one repository."
	packagesRepoFlagNameConstant            = "repo"
	packagesRepoFlagUsageConstant           = "Limit output to the repository at this path."
	packagesHeaderTemplateConstant          = "%s:\n"
	packagesVersionedHeaderTemplateConstant = "%s (%s):\n"
	packagesEntryTemplateConstant           = "  %s %s (%s)\n"
	packagesUnreadableTemplateConstant      = "%s:\tmanifest unreadable: %v\n"
	packagesEmptyFleetNoticeConstant        = "No repositories configured.\n"
	packagesUnknownRepoTemplateConstant     = "repository %s is not part of the fleet"
)

// PackagesCommandBuilder assembles the report packages command.
type PackagesCommandBuilder struct {
	LoggerProvider          LoggerProvider
	FleetConfigPathProvider func() string
	Store                   *fleet.Store
}

// Build constructs the report packages command.
func (builder *PackagesCommandBuilder) Build() (*cobra.Command, error) {
	var repoFlagValue string

	command := &cobra.Command{
		Use:   packagesUseConstant,
		Short: packagesShortDescriptionConstant,
		Long:  packagesLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, repoFlagValue)
		},
	}

	command.Flags().StringVar(&repoFlagValue, packagesRepoFlagNameConstant, "", packagesRepoFlagUsageConstant)

	return command, nil
}

func (builder *PackagesCommandBuilder) run(command *cobra.Command, repoFlagValue string) error {
	store, storeError := resolveStore(builder.Store, builder.FleetConfigPathProvider)
	if storeError != nil {
		return storeError
	}

	configuration, loadError := store.Load()
	if loadError != nil {
		return loadError
	}

	selectedRepositories, selectionError := selectRepositories(configuration, repoFlagValue)
	if selectionError != nil {
		return selectionError
	}

	if len(selectedRepositories) == 0 {
		fmt.Fprint(command.OutOrStdout(), packagesEmptyFleetNoticeConstant)
		return nil
	}

	for _, repositoryReference := range selectedRepositories {
		document, documentError := manifest.LoadRepositoryDocument(repositoryReference.Path)
		if documentError != nil {
			fmt.Fprintf(command.OutOrStdout(), packagesUnreadableTemplateConstant, repositoryReference.Path, documentError)
			continue
		}

		if manifestVersion := document.PackageVersion(); len(manifestVersion) > 0 {
			fmt.Fprintf(command.OutOrStdout(), packagesVersionedHeaderTemplateConstant, repositoryReference.Path, manifestVersion)
		} else {
			fmt.Fprintf(command.OutOrStdout(), packagesHeaderTemplateConstant, repositoryReference.Path)
		}
		for _, dependencyRecord := range document.ListDependencies() {
			fmt.Fprintf(command.OutOrStdout(), packagesEntryTemplateConstant, dependencyRecord.Name, dependencyRecord.Version, dependencyRecord.Class.SectionKey())
		}
	}

	return nil
}

func selectRepositories(configuration fleet.Configuration, repoFlagValue string) ([]fleet.RepositoryReference, error) {
	trimmedRepoPath := strings.TrimSpace(repoFlagValue)
	if len(trimmedRepoPath) == 0 {
		return configuration.Repositories, nil
	}

	for _, repositoryReference := range configuration.Repositories {
		if repositoryReference.Path == trimmedRepoPath {
			return []fleet.RepositoryReference{repositoryReference}, nil
		}
	}

	return nil, fmt.Errorf(packagesUnknownRepoTemplateConstant, trimmedRepoPath)
}
