package pattern

import "strings"

// DefaultPattern groups files by patient and study, then names them by
// series and instance.
const DefaultPattern = "%PatientName-%Modality%StudyID-%StudyDescription-%StudyDate/%SeriesNumber_%SeriesDescription-%InstanceNumber.dcm"

// SplitTarget separates a "targetDir/<pattern>" argument into the target root
// and the pattern. Leading segments without a field marker belong to the
// root. When the argument holds no marker at all it is taken as the root and
// defaultPattern is used.
func SplitTarget(arg, defaultPattern string) (root, pattern string) {
	if !strings.ContainsRune(arg, FieldMarker) {
		return arg, defaultPattern
	}
	parts := strings.Split(arg, "/")
	idx := 0
	for idx < len(parts) && !strings.ContainsRune(parts[idx], FieldMarker) {
		idx++
	}
	root = strings.Join(parts[:idx], "/")
	switch {
	case idx == 0:
		root = "."
	case root == "":
		root = "/"
	}
	return root, strings.Join(parts[idx:], "/")
}
