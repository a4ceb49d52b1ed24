package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	// ManifestFileName identifies the npm manifest inside a repository.
	ManifestFileName = "package.json"

	directDependenciesSectionKeyConstant      = "dependencies"
	developmentDependenciesSectionKeyConstant = "devDependencies"
	peerDependenciesSectionKeyConstant        = "peerDependencies"
	manifestNameFieldKeyConstant              = "name"
	manifestVersionFieldKeyConstant           = "version"
	manifestReadErrorTemplateConstant         = "unable to read manifest %s: %w"
	manifestParseErrorTemplateConstant        = "unable to parse manifest %s: %w"
	manifestWriteErrorTemplateConstant        = "unable to write manifest %s: %w"
	manifestEncodeErrorTemplateConstant       = "unable to encode manifest %s: %w"
	manifestIndentConstant                    = "  "
	manifestTrailingNewlineConstant           = "\n"
	manifestFilePermissionsConstant           = 0o644
	dependencyClassDirectStringConstant       = "direct"
	dependencyClassDevelopmentStringConstant  = "development"
	dependencyClassPeerStringConstant         = "peer"
)

// DependencyClass identifies which dependency table a package belongs to.
type DependencyClass string

// Dependency classes in manifest scan order.
const (
	DependencyClassDirect      DependencyClass = DependencyClass(dependencyClassDirectStringConstant)
	DependencyClassDevelopment DependencyClass = DependencyClass(dependencyClassDevelopmentStringConstant)
	DependencyClassPeer        DependencyClass = DependencyClass(dependencyClassPeerStringConstant)
)

// SectionKey returns the package.json object key holding the class's dependency table.
func (dependencyClass DependencyClass) SectionKey() string {
	switch dependencyClass {
	case DependencyClassDevelopment:
		return developmentDependenciesSectionKeyConstant
	case DependencyClassPeer:
		return peerDependenciesSectionKeyConstant
	default:
		return directDependenciesSectionKeyConstant
	}
}

func dependencyClassScanOrder() []DependencyClass {
	return []DependencyClass{DependencyClassDirect, DependencyClassDevelopment, DependencyClassPeer}
}

// DependencyRecord describes one dependency declaration inside a manifest.
type DependencyRecord struct {
	Name    string
	Version string
	Class   DependencyClass
}

// Document represents a parsed package.json retaining unrecognized fields.
type Document struct {
	fields map[string]any
}

// LoadDocument parses the manifest at the provided path.
func LoadDocument(manifestPath string) (*Document, error) {
	manifestContents, readError := os.ReadFile(manifestPath)
	if readError != nil {
		return nil, fmt.Errorf(manifestReadErrorTemplateConstant, manifestPath, readError)
	}

	documentFields := map[string]any{}
	if unmarshalError := json.Unmarshal(manifestContents, &documentFields); unmarshalError != nil {
		return nil, fmt.Errorf(manifestParseErrorTemplateConstant, manifestPath, unmarshalError)
	}

	return &Document{fields: documentFields}, nil
}

// LoadRepositoryDocument parses the package.json stored at the repository root.
func LoadRepositoryDocument(repositoryPath string) (*Document, error) {
	return LoadDocument(filepath.Join(repositoryPath, ManifestFileName))
}

// PackageName returns the manifest's declared package name when present.
func (document *Document) PackageName() string {
	return document.stringField(manifestNameFieldKeyConstant)
}

// PackageVersion returns the manifest's declared package version when present.
func (document *Document) PackageVersion() string {
	return document.stringField(manifestVersionFieldKeyConstant)
}

func (document *Document) stringField(fieldKey string) string {
	fieldValue, fieldPresent := document.fields[fieldKey]
	if !fieldPresent {
		return ""
	}
	stringValue, isString := fieldValue.(string)
	if !isString {
		return ""
	}
	return stringValue
}

// DependencyVersion reports the declared version range for a dependency, scanning
// direct, development, and peer tables in order.
func (document *Document) DependencyVersion(dependencyName string) (string, DependencyClass, bool) {
	for _, dependencyClass := range dependencyClassScanOrder() {
		dependencyTable := document.dependencyTable(dependencyClass)
		if dependencyTable == nil {
			continue
		}
		declaredVersion, dependencyPresent := dependencyTable[dependencyName]
		if !dependencyPresent {
			continue
		}
		versionString, isString := declaredVersion.(string)
		if !isString {
			continue
		}
		return versionString, dependencyClass, true
	}
	return "", DependencyClassDirect, false
}

// SetDependencyVersion updates every table declaring the dependency and reports
// whether any declaration changed.
func (document *Document) SetDependencyVersion(dependencyName string, requestedVersion string) bool {
	manifestChanged := false
	for _, dependencyClass := range dependencyClassScanOrder() {
		dependencyTable := document.dependencyTable(dependencyClass)
		if dependencyTable == nil {
			continue
		}
		declaredVersion, dependencyPresent := dependencyTable[dependencyName]
		if !dependencyPresent {
			continue
		}
		versionString, isString := declaredVersion.(string)
		if isString && versionString == requestedVersion {
			continue
		}
		dependencyTable[dependencyName] = requestedVersion
		manifestChanged = true
	}
	return manifestChanged
}

// ListDependencies returns every dependency declaration sorted by class order and name.
func (document *Document) ListDependencies() []DependencyRecord {
	dependencyRecords := []DependencyRecord{}
	for _, dependencyClass := range dependencyClassScanOrder() {
		dependencyTable := document.dependencyTable(dependencyClass)
		if dependencyTable == nil {
			continue
		}

		dependencyNames := make([]string, 0, len(dependencyTable))
		for dependencyName := range dependencyTable {
			dependencyNames = append(dependencyNames, dependencyName)
		}
		sort.Strings(dependencyNames)

		for _, dependencyName := range dependencyNames {
			versionString, _ := dependencyTable[dependencyName].(string)
			dependencyRecords = append(dependencyRecords, DependencyRecord{
				Name:    dependencyName,
				Version: versionString,
				Class:   dependencyClass,
			})
		}
	}
	return dependencyRecords
}

func (document *Document) dependencyTable(dependencyClass DependencyClass) map[string]any {
	sectionValue, sectionPresent := document.fields[dependencyClass.SectionKey()]
	if !sectionPresent {
		return nil
	}
	sectionTable, isTable := sectionValue.(map[string]any)
	if !isTable {
		return nil
	}
	return sectionTable
}

// Save writes the document back to the provided path with stable formatting.
func (document *Document) Save(manifestPath string) error {
	encodedManifest, encodeError := json.MarshalIndent(document.fields, "", manifestIndentConstant)
	if encodeError != nil {
		return fmt.Errorf(manifestEncodeErrorTemplateConstant, manifestPath, encodeError)
	}

	encodedManifest = append(encodedManifest, []byte(manifestTrailingNewlineConstant)...)
	if writeError := os.WriteFile(manifestPath, encodedManifest, manifestFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(manifestWriteErrorTemplateConstant, manifestPath, writeError)
	}

	return nil
}
