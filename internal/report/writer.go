package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"
)

// WriteBOM writes a BOM to a file (JSON or XML, chosen by extension).
func WriteBOM(bom *cdx.BOM, outputPath string) error {
	fileFmt := cdx.BOMFileFormatJSON
	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".json":
		// default
	case ".xml":
		fileFmt = cdx.BOMFileFormatXML
	default:
		return fmt.Errorf("unsupported report extension %q (want .json or .xml)", filepath.Ext(outputPath))
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := cdx.NewBOMEncoder(f, fileFmt)
	encoder.SetPretty(true)
	return encoder.Encode(bom)
}
