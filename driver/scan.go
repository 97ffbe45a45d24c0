package driver

import (
	"io/fs"
	"path/filepath"
)

type FileInfo struct {
	Path string
	Size int64
}

// Scan lists the files under root with one of the extensions, in lexical
// order. No extensions selects every file.
func Scan(root string, extensions []string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isTargetFile(path, extensions) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{Path: path, Size: info.Size()})
		return nil
	})
	return files, err
}

func isTargetFile(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}

	ext := filepath.Ext(path)
	for _, targetExt := range extensions {
		if ext == targetExt {
			return true
		}
	}
	return false
}
