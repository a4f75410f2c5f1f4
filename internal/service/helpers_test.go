package service

import (
	"bytes"
	"fmt"
	"io"

	"handoc/internal/logger"
	"handoc/internal/repository"
	repoMocks "handoc/internal/repository/mocks"
	storeMocks "handoc/internal/storage/mocks"
)

// testPDF is a minimal one-page document that passes pdf.Validate.
func testPDF() []byte {
	stream := "BT /F1 12 Tf 72 712 Td (Hello HanDoc) Tj ET"
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [4 0 R] /Count 1 >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents 5 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

type fakeQueue struct {
	ids []string
	err error
}

func (q *fakeQueue) Enqueue(id string) error {
	if q.err != nil {
		return q.err
	}
	q.ids = append(q.ids, id)
	return nil
}

type repoSet struct {
	docs     *repoMocks.MockDocumentRepository
	users    *repoMocks.MockUserRepository
	analyses *repoMocks.MockAnalysisRepository
	feedback *repoMocks.MockFeedbackRepository
	store    *storeMocks.MockStorage
}

func newRepoSet() *repoSet {
	return &repoSet{
		docs:     new(repoMocks.MockDocumentRepository),
		users:    new(repoMocks.MockUserRepository),
		analyses: new(repoMocks.MockAnalysisRepository),
		feedback: new(repoMocks.MockFeedbackRepository),
		store:    new(storeMocks.MockStorage),
	}
}

func (r *repoSet) repos() repository.Repositories {
	return repository.Repositories{Users: r.users, Documents: r.docs, Analyses: r.analyses, Feedback: r.feedback}
}

func discardLogger() *logger.Logger {
	return logger.New(io.Discard, nil, "test")
}
