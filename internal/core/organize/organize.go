// Package organize derives the local destination layout for device
// files: <root>/<album>/<category>/<extension>/<year_month>/<name>.
package organize

import (
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Destination categories. Classification runs on the media type
// guessed from the file extension.
const (
	CategoryPhotos    = "Photos"
	CategoryVideos    = "Videos"
	CategoryAudio     = "Audio"
	CategoryDocuments = "Documents"
	CategoryArchives  = "Archives"
	CategoryOthers    = "Others"
)

// UnknownDateFolder holds files whose modification time could not be
// read from the device.
const UnknownDateFolder = "Unknown_Date"

// dateFolderLayout renders "2024_March".
const dateFolderLayout = "2006_January"

// The host's media-type table varies (and is nearly empty on some
// systems), while device storage is dominated by a known set of
// formats. Registering them keeps classification deterministic.
func init() {
	seed := map[string]string{
		".heic": "image/heic",
		".heif": "image/heif",
		".bmp":  "image/bmp",
		".tiff": "image/tiff",
		".dng":  "image/x-adobe-dng",
		".mp4":  "video/mp4",
		".3gp":  "video/3gpp",
		".mkv":  "video/x-matroska",
		".avi":  "video/x-msvideo",
		".mov":  "video/quicktime",
		".webm": "video/webm",
		".m4v":  "video/x-m4v",
		".mp3":  "audio/mpeg",
		".m4a":  "audio/mp4",
		".ogg":  "audio/ogg",
		".opus": "audio/opus",
		".flac": "audio/flac",
		".wav":  "audio/x-wav",
		".aac":  "audio/aac",
		".amr":  "audio/amr",
		".txt":  "text/plain",
		".rtf":  "application/rtf",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".ppt":  "application/vnd.ms-powerpoint",
		".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		".xls":  "application/vnd.ms-excel",
		".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		".odt":  "application/vnd.oasis.opendocument.text",
		".zip":  "application/zip",
		".gz":   "application/gzip",
		".tar":  "application/x-tar",
		".tgz":  "application/x-tar",
		".rar":  "application/vnd.rar",
		".7z":   "application/x-7z-compressed",
		".apk":  "application/vnd.android.package-archive",
	}
	for ext, mtype := range seed {
		mime.AddExtensionType(ext, mtype)
	}
}

// docExtensions route to Documents even when their media type says
// nothing useful.
var docExtensions = []string{
	".pdf", ".doc", ".docx", ".ppt", ".pptx", ".xls", ".xlsx", ".odt", ".txt", ".rtf",
}

// archiveTokens mark an application/* subtype as an archive.
var archiveTokens = []string{"zip", "rar", "7z", "tar", "g-zip"}

// Classify buckets a filename into a destination category.
func Classify(filename string) string {
	mtype := mime.TypeByExtension(strings.ToLower(path.Ext(filename)))
	if mtype == "" {
		return CategoryOthers
	}
	// TypeByExtension may append parameters ("text/plain; charset=utf-8")
	if cut, _, found := strings.Cut(mtype, ";"); found {
		mtype = cut
	}

	mainType, subType, found := strings.Cut(mtype, "/")
	if !found {
		return CategoryOthers
	}

	switch mainType {
	case "image":
		return CategoryPhotos
	case "video":
		return CategoryVideos
	case "audio":
		return CategoryAudio
	}

	lower := strings.ToLower(filename)
	for _, ext := range docExtensions {
		if strings.HasSuffix(lower, ext) {
			return CategoryDocuments
		}
	}
	if mainType == "text" || strings.Contains(subType, "document") {
		return CategoryDocuments
	}

	if strings.Contains(mainType, "application") {
		for _, token := range archiveTokens {
			if strings.Contains(subType, token) {
				return CategoryArchives
			}
		}
	}

	return CategoryOthers
}

// DateFolder renders the year_month folder for a modification time.
// ok=false means the time could not be read.
func DateFolder(modTime time.Time, ok bool) string {
	if !ok {
		return UnknownDateFolder
	}
	return modTime.Format(dateFolderLayout)
}

// ExtFolder returns the extension folder: the raw extension without
// its dot, case preserved. Extensionless files, including dotfiles,
// land in no_extension.
func ExtFolder(remotePath string) string {
	base := path.Base(remotePath)
	ext := path.Ext(base)
	if ext == "" || ext == base {
		return "no_extension"
	}
	if trimmed := strings.Trim(ext, "."); trimmed != "" {
		return trimmed
	}
	return "no_extension"
}

// DestPath derives the full local destination for one remote file.
func DestPath(destRoot, album, remotePath string, modTime time.Time, modKnown bool) string {
	base := path.Base(remotePath)
	return filepath.Join(
		destRoot,
		album,
		Classify(base),
		ExtFolder(remotePath),
		DateFolder(modTime, modKnown),
		base,
	)
}
