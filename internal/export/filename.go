package export

import "dossier-backend/internal/shared/util"

const archiveSuffix = "_documents.zip"

// DeriveFilename turns a procedure title into the archive filename: every
// character outside [A-Za-z0-9] becomes '_' and "_documents.zip" is appended.
func DeriveFilename(title string) string {
	return util.ReplaceUnsafe(title, util.IsAlphanumeric) + archiveSuffix
}
