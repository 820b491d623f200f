package docs

import (
	"io"
	"strings"
	"voltflow/client/s3"
	"voltflow/domain/work"
	"voltflow/session"

	"github.com/fundwit/go-commons/types"
)

var (
	UploadWorkDocumentFunc   = UploadWorkDocument
	DownloadWorkDocumentFunc = DownloadWorkDocument
	ListWorkDocumentsFunc    = ListWorkDocuments
)

func objectKey(workId types.ID, name string) string {
	return "work-docs/" + workId.String() + "/" + name
}

// UploadWorkDocument stores a document under the work's object prefix.
// Permission checks ride on the work detail lookup.
func UploadWorkDocument(workId types.ID, name string, content io.Reader, s *session.Session) error {
	if _, err := work.DetailWorkFunc(workId.String(), s); err != nil {
		return err
	}
	return s3.PutObjectFunc(objectKey(workId, name), content, s)
}

func DownloadWorkDocument(workId types.ID, name string, s *session.Session) (io.ReadCloser, error) {
	if _, err := work.DetailWorkFunc(workId.String(), s); err != nil {
		return nil, err
	}
	return s3.GetObjectFunc(objectKey(workId, name), s)
}

// ListWorkDocuments returns document names, not raw object keys.
func ListWorkDocuments(workId types.ID, s *session.Session) ([]string, error) {
	if _, err := work.DetailWorkFunc(workId.String(), s); err != nil {
		return nil, err
	}

	prefix := objectKey(workId, "")
	keys, err := s3.ListObjectFunc(prefix, s)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, strings.TrimPrefix(key, prefix))
	}
	return names, nil
}
