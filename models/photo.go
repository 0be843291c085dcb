package models

// Photo categories.
const (
	PhotoBefore   = "before"
	PhotoAfter    = "after"
	PhotoProgress = "progress"
	PhotoDamage   = "damage"
	PhotoReceipt  = "receipt"
	PhotoOther    = "other"
)

// Note categories.
const (
	NoteGeneral     = "general"
	NoteAccess      = "access"
	NoteBilling     = "billing"
	NoteMaintenance = "maintenance"
)

// PhotoFile is the file metadata embedded in every photo table.
type PhotoFile struct {
	Category    string `gorm:"type:varchar(20);default:'other'" json:"category"`
	Description string `gorm:"type:text" json:"description"`
	FileName    string `gorm:"not null" json:"fileName"`
	FilePath    string `gorm:"not null" json:"filePath"`
	MimeType    string `gorm:"type:varchar(100)" json:"mimeType"`
	Size        int64  `json:"size"`
}

// StoredPath is the file location relative to the upload root.
func (p *PhotoFile) StoredPath() string {
	return p.FilePath
}

func ValidPhotoCategory(c string) bool {
	switch c {
	case PhotoBefore, PhotoAfter, PhotoProgress, PhotoDamage, PhotoReceipt, PhotoOther:
		return true
	}
	return false
}

func ValidNoteCategory(c string) bool {
	switch c {
	case NoteGeneral, NoteAccess, NoteBilling, NoteMaintenance:
		return true
	}
	return false
}
