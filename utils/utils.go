package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

// CameraInfo is the camera identification found in a RAW file's EXIF
// block. Used for operator logging only; conversions do not depend on it.
type CameraInfo struct {
	Make  string
	Model string
}

func (c CameraInfo) String() string {
	switch {
	case c.Make == "" && c.Model == "":
		return "unknown camera"
	case c.Make == "":
		return c.Model
	case c.Model == "":
		return c.Make
	}
	if strings.HasPrefix(c.Model, c.Make) {
		return c.Model
	}
	return c.Make + " " + c.Model
}

// GetCameraInfo extracts the camera make and model from the EXIF block
// of the file. 3FR files are TIFF containers, so the standard IFD0 tags
// apply.
func GetCameraInfo(filePath string) (CameraInfo, error) {
	info := CameraInfo{}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return info, err
	}

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return info, fmt.Errorf("EXIF not found: %v", err)
	}

	im := exifcommon.NewIfdMapping()
	ti := exif.NewTagIndex()
	if err := exifcommon.LoadStandardIfds(im); err != nil {
		return info, err
	}

	_, index, err := exif.Collect(im, ti, rawExif)
	if err != nil {
		return info, err
	}

	if tag, err := index.RootIfd.FindTagWithName("Make"); err == nil && len(tag) > 0 {
		if val, err := tag[0].Value(); err == nil {
			if s, ok := val.(string); ok {
				info.Make = strings.TrimSpace(s)
			}
		}
	}

	if tag, err := index.RootIfd.FindTagWithName("Model"); err == nil && len(tag) > 0 {
		if val, err := tag[0].Value(); err == nil {
			if s, ok := val.(string); ok {
				info.Model = strings.TrimSpace(s)
			}
		}
	}

	return info, nil
}
