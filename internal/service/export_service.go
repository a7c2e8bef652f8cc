package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/export"
	"github.com/parisxmas/OxiDB/OxiResearch/internal/models"
)

const (
	// TempSuffix marks workbooks that are still being written.
	TempSuffix = ".xlsx.tmp"

	fallbackName = "export"
	maxNameLen   = 128
	hashLen      = 8
)

// Export result labels reported to the ExportRecorder.
const (
	ResultOK           = "ok"
	ResultNoDefinition = "no_definition"
	ResultError        = "error"
)

// ExportRecorder observes finished exports.
type ExportRecorder interface {
	ObserveExport(result string, rows int, elapsed time.Duration)
}

// Artifact is a generated workbook, open for reading from the start. The
// caller must Close it.
type Artifact struct {
	File        *os.File
	Name        string
	Path        string
	ModTime     time.Time
	Rows        int
	TitlesFound bool
}

func (a *Artifact) Close() error {
	return a.File.Close()
}

type ExportService struct {
	data      DataStore
	research  ResearchStore
	mediaRoot string
	recorder  ExportRecorder
}

func NewExportService(data DataStore, research ResearchStore, mediaRoot string, recorder ExportRecorder) *ExportService {
	return &ExportService{data: data, research: research, mediaRoot: mediaRoot, recorder: recorder}
}

// Export writes every submission of researchID into a workbook under the
// media root and returns it opened for streaming.
//
// An empty researchID exports nothing and yields an empty workbook. A
// definition that cannot be resolved only costs the labels: headers fall
// back to the raw field ids.
func (s *ExportService) Export(ctx context.Context, researchID string) (*Artifact, error) {
	start := time.Now()
	art, err := s.export(ctx, researchID)

	if s.recorder != nil {
		result, rows := ResultError, 0
		if err == nil {
			result, rows = ResultOK, art.Rows
			if !art.TitlesFound {
				result = ResultNoDefinition
			}
		}
		s.recorder.ObserveExport(result, rows, time.Since(start))
	}
	return art, err
}

func (s *ExportService) export(ctx context.Context, researchID string) (*Artifact, error) {
	var data []models.ResearchData
	titles := export.TitlesFrom(nil)

	if researchID == "" {
		log.Printf("Warning: export requested without research_id, writing empty workbook")
	} else {
		var err error
		data, err = s.data.Find(ctx, models.DataFilter{ResearchID: researchID})
		if err != nil {
			return nil, fmt.Errorf("export %s: load research data: %w", researchID, err)
		}
		titles = s.lookupTitles(ctx, researchID)
	}

	sheet := export.Build(titles, data)
	art, err := s.materialize(SafeFileName(researchID), sheet)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", researchID, err)
	}
	art.TitlesFound = titles.Found
	return art, nil
}

func (s *ExportService) lookupTitles(ctx context.Context, researchID string) export.Titles {
	r, err := s.research.FindByID(ctx, researchID)
	if err != nil {
		log.Printf("Warning: export %s: definition lookup failed, using raw field ids: %v", researchID, err)
		return export.TitlesFrom(nil)
	}
	if r == nil {
		log.Printf("Warning: export %s: definition not found, using raw field ids", researchID)
	}
	return export.TitlesFrom(r)
}

// materialize writes the sheet to a private temp file, then renames it
// over <base>.xlsx. The handle stays open across the rename so a
// concurrent export of the same id cannot swap the content under us.
func (s *ExportService) materialize(base string, sheet export.Sheet) (*Artifact, error) {
	if err := os.MkdirAll(s.mediaRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}

	tmp := filepath.Join(s.mediaRoot, base+"."+uuid.NewString()+TempSuffix)
	f, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create workbook: %w", err)
	}
	fail := func(err error) (*Artifact, error) {
		f.Close()
		os.Remove(tmp)
		return nil, err
	}

	if err := export.Write(f, sheet); err != nil {
		return fail(err)
	}
	if err := f.Sync(); err != nil {
		return fail(fmt.Errorf("sync workbook: %w", err))
	}

	name := base + ".xlsx"
	final := filepath.Join(s.mediaRoot, name)
	if err := os.Rename(tmp, final); err != nil {
		return fail(fmt.Errorf("publish workbook: %w", err))
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("rewind workbook: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat workbook: %w", err)
	}

	return &Artifact{
		File:    f,
		Name:    name,
		Path:    final,
		ModTime: st.ModTime(),
		Rows:    len(sheet.Rows),
	}, nil
}

// SafeFileName maps a research id onto a file name that stays inside the
// media root: anything outside [A-Za-z0-9._-] becomes '_' and a leading dot
// is escaped. When the id had to be rewritten (or could be mistaken for a
// rewritten one) a short hash of the original id is appended, so distinct
// ids never share an artifact.
func SafeFileName(researchID string) string {
	if researchID == "" {
		return fallbackName
	}
	var b strings.Builder
	for _, r := range researchID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := b.String()
	if strings.HasPrefix(name, ".") {
		name = "_" + name
	}
	if name == researchID && len(name) <= maxNameLen && name != fallbackName && !hasHashSuffix(name) {
		return name
	}

	sum := sha256.Sum256([]byte(researchID))
	suffix := "-" + hex.EncodeToString(sum[:hashLen/2])
	if len(name) > maxNameLen-len(suffix) {
		name = name[:maxNameLen-len(suffix)]
	}
	return name + suffix
}

func hasHashSuffix(name string) bool {
	if len(name) < hashLen+1 || name[len(name)-hashLen-1] != '-' {
		return false
	}
	for _, r := range name[len(name)-hashLen:] {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}
