package entity

import (
	"mime"
	"path"
	"strings"
	"time"
)

type Module struct {
	ID        int64
	EditionID int64
	Title     string
	Ordinal   int32
	Lessons   []Lesson
	CreatedAt time.Time
}

type Lesson struct {
	ID            int64
	ModuleID      int64
	Title         string
	Content       string
	VideoURL      string
	IsFreePreview bool
	Ordinal       int32
	CreatedAt     time.Time
	Attachments   []Attachment
}

// Restricted hides the paid parts of a lesson. Free previews stay intact.
func (l Lesson) Restricted() Lesson {
	if l.IsFreePreview {
		return l
	}
	l.Content = ""
	l.VideoURL = ""
	l.Attachments = []Attachment{}
	return l
}

// Attachment is a downloadable file of a lesson, ordered within the lesson.
type Attachment struct {
	ID        int64
	LessonID  int64
	Title     string
	FileURL   string
	FileType  string
	FileSize  int64
	Ordinal   int32
	CreatedAt time.Time
}

type NewModule struct {
	ID        int64
	EditionID int64
	Title     string
}

type NewLesson struct {
	ID            int64
	ModuleID      int64
	Title         string
	Content       string
	IsFreePreview bool
}

type NewAttachment struct {
	ID       int64
	LessonID int64
	Title    string
	FileURL  string
	FileType string
	FileSize int64
}

// FileType names the type of an uploaded file. The sniffed content type wins
// unless it is the generic binary type, then the file name extension decides.
func FileType(sniffed, fileName string) string {
	sniffed = strings.TrimSpace(strings.SplitN(sniffed, ";", 2)[0])
	if sniffed != "" && sniffed != "application/octet-stream" {
		return strings.ToLower(sniffed)
	}

	if byExt := mime.TypeByExtension(strings.ToLower(path.Ext(fileName))); byExt != "" {
		return strings.SplitN(byExt, ";", 2)[0]
	}

	return "application/octet-stream"
}

// FileExt is the extension stored with an object of the given type.
func FileExt(fileType, fileName string) string {
	if ext := strings.ToLower(path.Ext(fileName)); ext != "" && len(ext) <= 8 {
		return ext
	}
	if exts, err := mime.ExtensionsByType(fileType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
