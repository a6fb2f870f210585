package artifact

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wonny/fundmetrics/internal/contracts"
	"github.com/wonny/fundmetrics/pkg/logger"
)

// Store persists result tables as gob files in one artifact directory
// ⭐ SSOT: 결과물 직렬화/역직렬화는 여기서만
//
// gob는 float64를 비트 그대로 기록하므로 undefined 센티널(NaN)을 포함해
// 왕복(round-trip) 후에도 테이블이 동일함.
//
// 파일명 규약:
//   <Metric>_<Window>.gob             펀드 기본/fit 지표
//   Benchmarks_<Metric>_<Window>.gob  피어 벤치마크 기본 지표
//   Percentile_<Metric>_<Window>.gob  피어그룹 백분위 랭크
//   <Kind>_<Window>.gob               상관관계 (Corr/UpCorr/DownCorr)
//   metadata.gob                      펀드/벤치마크 메타데이터
type Store struct {
	dir    string
	logger *logger.Logger
}

// Metadata bundles the static descriptions written next to the tables
type Metadata struct {
	Funds      []contracts.FundMeta
	Benchmarks []contracts.BenchmarkMeta
}

// ArtifactInfo describes one stored artifact file
type ArtifactInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// NewStore creates the artifact directory if needed
func NewStore(dir string, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: log}, nil
}

// Dir returns the artifact directory
func (s *Store) Dir() string {
	return s.dir
}

// SaveMetricTable writes one fund metric table
func (s *Store) SaveMetricTable(t *contracts.MetricTable) error {
	return s.write(metricFile(t.Metric, t.Window), t)
}

// LoadMetricTable reads one fund metric table
func (s *Store) LoadMetricTable(metric contracts.MetricKind, w contracts.Window) (*contracts.MetricTable, error) {
	var t contracts.MetricTable
	if err := s.read(metricFile(metric, w), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// SaveBenchmarkTable writes one benchmark metric table
// 대시보드 오버레이용: 피어 벤치마크에도 기본 지표가 계산됨
func (s *Store) SaveBenchmarkTable(t *contracts.MetricTable) error {
	return s.write("Benchmarks_"+metricFile(t.Metric, t.Window), t)
}

// LoadBenchmarkTable reads one benchmark metric table
func (s *Store) LoadBenchmarkTable(metric contracts.MetricKind, w contracts.Window) (*contracts.MetricTable, error) {
	var t contracts.MetricTable
	if err := s.read("Benchmarks_"+metricFile(metric, w), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// SaveRankTable writes one percentile rank table
func (s *Store) SaveRankTable(t *contracts.RankTable) error {
	return s.write(rankFile(t.Metric, t.Window), t)
}

// LoadRankTable reads one percentile rank table
func (s *Store) LoadRankTable(metric contracts.MetricKind, w contracts.Window) (*contracts.RankTable, error) {
	var t contracts.RankTable
	if err := s.read(rankFile(metric, w), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// SaveCorrelationTable writes one correlation table
func (s *Store) SaveCorrelationTable(t *contracts.CorrelationTable) error {
	return s.write(correlationFile(t.Kind, t.Window), t)
}

// LoadCorrelationTable reads one correlation table
func (s *Store) LoadCorrelationTable(kind contracts.CorrelationKind, w contracts.Window) (*contracts.CorrelationTable, error) {
	var t contracts.CorrelationTable
	if err := s.read(correlationFile(kind, w), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// SaveMetadata writes fund/benchmark metadata
func (s *Store) SaveMetadata(m *Metadata) error {
	return s.write("metadata.gob", m)
}

// LoadMetadata reads fund/benchmark metadata
func (s *Store) LoadMetadata() (*Metadata, error) {
	var m Metadata
	if err := s.read("metadata.gob", &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns all artifact files, sorted by name
func (s *Store) List() ([]ArtifactInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read artifact dir %s: %w", s.dir, err)
	}

	out := make([]ArtifactInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".gob") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, ArtifactInfo{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

// write encodes one value; 임시 파일 + rename 으로 부분 쓰기 방지
func (s *Store) write(name string, v interface{}) error {
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create artifact %s: %w", name, err)
	}

	if err := gob.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode artifact %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close artifact %s: %w", name, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("finalize artifact %s: %w", name, err)
	}

	s.logger.WithField("artifact", name).Debug("Artifact written")
	return nil
}

// read decodes one value
func (s *Store) read(name string, v interface{}) error {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("open artifact %s: %w", name, err)
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode artifact %s: %w", name, err)
	}
	return nil
}

func metricFile(metric contracts.MetricKind, w contracts.Window) string {
	return fmt.Sprintf("%s_%s.gob", metric, w.Label())
}

func rankFile(metric contracts.MetricKind, w contracts.Window) string {
	return fmt.Sprintf("Percentile_%s_%s.gob", metric, w.Label())
}

func correlationFile(kind contracts.CorrelationKind, w contracts.Window) string {
	return fmt.Sprintf("%s_%s.gob", kind, w.Label())
}
