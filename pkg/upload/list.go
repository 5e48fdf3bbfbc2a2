package upload

// FileList is an array-list-like collection of files. It is not a file
// itself, extraction turns it into a sequence and inspects every item.
type FileList struct {
	files []*File
}

func NewFileList(files ...*File) *FileList {
	return &FileList{files: files}
}

func (l *FileList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.files)
}

func (l *FileList) Item(i int) any {
	return l.files[i]
}
