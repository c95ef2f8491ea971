package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roboco-io/koimport/internal/filter"
	"github.com/roboco-io/koimport/internal/parser"
	"github.com/roboco-io/koimport/internal/parser/kocrypt"
	"github.com/roboco-io/koimport/internal/parser/ole"
	"github.com/roboco-io/koimport/internal/parser/wmf"
)

var (
	inspectRecords bool
	inspectJSON    bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "입력 파일 구조 표시",
	Long: `입력 파일을 변환하지 않고 구조만 표시합니다.

  - WMF 메타파일: 헤더, 경계 사각형, 해상도, 레코드 통계
  - OLE2 컨테이너: 스트림 목록과 내장 메타파일
  - 암호화 문서: 헤더와 MIME 타입 (패스워드 불필요)

예시:
  koimport inspect drawing.wmf
  koimport inspect drawing.wmf --records
  koimport inspect secret.kwc --json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectRecords, "records", false, "메타파일 레코드 목록 출력")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "JSON으로 출력")

	rootCmd.AddCommand(inspectCmd)
}

// Report describes the structure of an input file.
type Report struct {
	Path     string          `json:"path"`
	Format   string          `json:"format"`
	Size     int64           `json:"size"`
	Metafile *MetafileReport `json:"metafile,omitempty"`
	Streams  []StreamReport  `json:"streams,omitempty"`
	Crypt    *CryptReport    `json:"crypt,omitempty"`
}

// MetafileReport summarizes a metafile header and its records.
type MetafileReport struct {
	Placeable bool           `json:"placeable"`
	Version   string         `json:"version"`
	Objects   int            `json:"objects"`
	BBox      [4]int         `json:"bbox"`
	DPI       int            `json:"dpi"`
	Records   int            `json:"records"`
	Counts    map[string]int `json:"counts"`
	List      []RecordReport `json:"list,omitempty"`
}

// RecordReport is one metafile record.
type RecordReport struct {
	Offset int    `json:"offset"`
	Name   string `json:"name"`
	Words  uint32 `json:"words"`
}

// StreamReport is one stream of an OLE2 container.
type StreamReport struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// CryptReport describes the plaintext header of an encrypted document.
type CryptReport struct {
	App       string `json:"app"`
	Version   int    `json:"version"`
	Algorithm string `json:"algorithm"`
	MimeType  string `json:"mime_type"`
	Payload   int64  `json:"payload"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	rep, err := inspect(args[0], inspectRecords)
	if err != nil {
		return err
	}

	if inspectJSON {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("JSON 변환 실패: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	return writeReport(cmd.OutOrStdout(), rep)
}

func inspect(path string, records bool) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("파일을 열 수 없습니다: %w", err)
	}
	format, err := filter.Detect(path)
	if err != nil {
		return nil, err
	}

	rep := &Report{Path: path, Format: format.String(), Size: int64(len(data))}
	switch format {
	case parser.FormatWMF:
		rep.Metafile, err = inspectMetafile(data, records)

	case parser.FormatOLE:
		err = inspectContainer(rep, data, records)

	case parser.FormatKWordCrypt, parser.FormatKSpreadCrypt:
		rep.Crypt, err = inspectCrypt(data)
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func inspectMetafile(data []byte, records bool) (*MetafileReport, error) {
	r, err := wmf.Load(data)
	if err != nil {
		return nil, fmt.Errorf("WMF 헤더 파싱 실패: %w", err)
	}
	r.SetDefaultDPI(cfg.WMF.DefaultDPI)

	recs, err := r.Records()
	if err != nil {
		return nil, fmt.Errorf("레코드 읽기 실패: %w", err)
	}

	h := r.Header()
	bb := r.BoundingBox()
	m := &MetafileReport{
		Placeable: h.IsPlaceable(),
		Version:   fmt.Sprintf("0x%04X", h.Meta.Version),
		Objects:   int(h.Meta.NumObjects),
		BBox:      [4]int{bb.Min.X, bb.Min.Y, bb.Max.X, bb.Max.Y},
		DPI:       r.DPI(),
		Records:   len(recs),
		Counts:    make(map[string]int),
	}
	for _, rec := range recs {
		m.Counts[rec.Name()]++
		if records {
			m.List = append(m.List, RecordReport{Offset: rec.Offset, Name: rec.Name(), Words: rec.Size})
		}
	}
	return m, nil
}

func inspectContainer(rep *Report, data []byte, records bool) error {
	c, err := ole.New(bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer c.Close()

	for _, s := range c.Streams() {
		rep.Streams = append(rep.Streams, StreamReport{Path: s.Path, Size: s.Size})
	}

	wmfData, err := c.ReadStream(cfg.WMF.StreamName)
	if errors.Is(err, ole.ErrNoMetafile) {
		return nil
	}
	if err != nil {
		return err
	}
	rep.Metafile, err = inspectMetafile(wmfData, records)
	return err
}

func inspectCrypt(data []byte) (*CryptReport, error) {
	h, err := kocrypt.ReadHeader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &CryptReport{
		App:       h.App.String(),
		Version:   int(h.Version),
		Algorithm: "blowfish-cbc",
		MimeType:  h.App.MimeType(),
		Payload:   int64(len(data) - kocrypt.HeaderSize),
	}, nil
}

func writeReport(out io.Writer, rep *Report) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "파일:\t%s\n", rep.Path)
	fmt.Fprintf(w, "형식:\t%s\n", rep.Format)
	fmt.Fprintf(w, "크기:\t%s\n", humanize.Bytes(uint64(rep.Size)))

	if c := rep.Crypt; c != nil {
		fmt.Fprintf(w, "앱:\t%s (v%d, %s)\n", c.App, c.Version, c.Algorithm)
		fmt.Fprintf(w, "MIME:\t%s\n", c.MimeType)
		fmt.Fprintf(w, "암호문:\t%s\n", humanize.Bytes(uint64(c.Payload)))
	}

	if len(rep.Streams) > 0 {
		fmt.Fprintf(w, "스트림:\t%d개\n", len(rep.Streams))
		for _, s := range rep.Streams {
			fmt.Fprintf(w, "  %s\t%s\n", s.Path, humanize.Bytes(uint64(s.Size)))
		}
	}

	if m := rep.Metafile; m != nil {
		kind := "standard"
		if m.Placeable {
			kind = "placeable"
		}
		fmt.Fprintf(w, "메타파일:\t%s, version %s, objects %d\n", kind, m.Version, m.Objects)
		fmt.Fprintf(w, "경계:\t(%d,%d)-(%d,%d), %d DPI\n", m.BBox[0], m.BBox[1], m.BBox[2], m.BBox[3], m.DPI)
		fmt.Fprintf(w, "레코드:\t%d개\n", m.Records)

		names := make([]string, 0, len(m.Counts))
		for name := range m.Counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s\t%d\n", name, m.Counts[name])
		}

		if len(m.List) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "오프셋\t레코드\t워드")
			for _, rec := range m.List {
				fmt.Fprintf(w, "%d\t%s\t%d\n", rec.Offset, rec.Name, rec.Words)
			}
		}
	}
	return w.Flush()
}
