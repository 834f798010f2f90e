package formula

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	formulaFileExtensionConstant     = ".rb"
	tapNotFoundTemplateConstant      = "tap %s not found: %w"
	tapWalkTemplateConstant          = "unable to scan tap %s: %w"
	formulaReadFailedMessageConstant = "unable to read formula"
	formulaLoadedMessageConstant     = "loaded formulae"
	logFieldPathConstant             = "path"
	logFieldTapConstant              = "tap"
	logFieldFormulaCountConstant     = "formula_count"
	logFieldHeadFormulaCountConstant = "head_formula_count"
)

var formulaDirectoryNames = []string{"Formula", "HomebrewFormula"}

// Loader reads formula definitions from tap directories.
type Loader struct {
	fileSystem afero.Fs
	logger     *zap.Logger
}

// NewLoader constructs a Loader. A nil filesystem selects the OS filesystem.
func NewLoader(fileSystem afero.Fs, logger *zap.Logger) *Loader {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fileSystem: fileSystem, logger: logger}
}

// Load reads every formula in the provided taps, sorted by name.
// Formulae that cannot be read are logged and skipped.
func (loader *Loader) Load(tapPaths []string) ([]Definition, error) {
	var definitions []Definition
	for _, tapPath := range tapPaths {
		tapDefinitions, loadError := loader.LoadTap(tapPath)
		if loadError != nil {
			return nil, loadError
		}
		definitions = append(definitions, tapDefinitions...)
	}

	sort.SliceStable(definitions, func(leftIndex int, rightIndex int) bool {
		return definitions[leftIndex].Name < definitions[rightIndex].Name
	})
	return definitions, nil
}

// LoadTap reads the formulae of a single tap checkout.
func (loader *Loader) LoadTap(tapPath string) ([]Definition, error) {
	if _, statError := loader.fileSystem.Stat(tapPath); statError != nil {
		return nil, fmt.Errorf(tapNotFoundTemplateConstant, tapPath, statError)
	}

	formulaDirectory, recursive := loader.resolveFormulaDirectory(tapPath)

	var definitions []Definition
	headFormulaCount := 0
	walkError := afero.Walk(loader.fileSystem, formulaDirectory, func(path string, info fs.FileInfo, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if info.IsDir() {
			if !recursive && path != formulaDirectory {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != formulaFileExtensionConstant {
			return nil
		}

		contents, readError := afero.ReadFile(loader.fileSystem, path)
		if readError != nil {
			loader.logger.Warn(formulaReadFailedMessageConstant, zap.String(logFieldPathConstant, path), zap.Error(readError))
			return nil
		}

		definition := Definition{
			Name: strings.TrimSuffix(filepath.Base(path), formulaFileExtensionConstant),
			Path: path,
			Head: ParseHead(string(contents)),
		}
		if definition.Head != nil {
			headFormulaCount++
		}
		definitions = append(definitions, definition)
		return nil
	})
	if walkError != nil {
		return nil, fmt.Errorf(tapWalkTemplateConstant, tapPath, walkError)
	}

	loader.logger.Debug(
		formulaLoadedMessageConstant,
		zap.String(logFieldTapConstant, tapPath),
		zap.Int(logFieldFormulaCountConstant, len(definitions)),
		zap.Int(logFieldHeadFormulaCountConstant, headFormulaCount),
	)
	return definitions, nil
}

// resolveFormulaDirectory mirrors Homebrew's lookup: a Formula or
// HomebrewFormula directory is scanned recursively, otherwise only the
// top level of the tap is considered.
func (loader *Loader) resolveFormulaDirectory(tapPath string) (string, bool) {
	for _, directoryName := range formulaDirectoryNames {
		candidate := filepath.Join(tapPath, directoryName)
		if isDirectory, _ := afero.IsDir(loader.fileSystem, candidate); isDirectory {
			return candidate, true
		}
	}
	return tapPath, false
}

// HeadDefinitions filters definitions down to those declaring a head source.
func HeadDefinitions(definitions []Definition) []Definition {
	headDefinitions := make([]Definition, 0, len(definitions))
	for _, definition := range definitions {
		if definition.Head != nil {
			headDefinitions = append(headDefinitions, definition)
		}
	}
	return headDefinitions
}
