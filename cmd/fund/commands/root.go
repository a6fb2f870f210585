package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/fundmetrics/pkg/config"
	"github.com/wonny/fundmetrics/pkg/logger"
)

var (
	// Global flags
	analysisFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fund",
	Short: "fundmetrics - 펀드 피어그룹 분석 파이프라인",
	Long: `fundmetrics CLI

스프레드시트 기반 펀드 분석 워크플로우를 대체하는 배치 파이프라인.
월간 수익률을 읽어 롤링 지표 → 피어그룹 랭킹 → 벤치마크 상관관계를
계산하고 아티팩트(gob + xlsx)로 저장한다.

Usage:
  go run ./cmd/fund [command]

Examples:
  go run ./cmd/fund compute
  go run ./cmd/fund rank
  go run ./cmd/fund serve --refresh-cron "@monthly"
  go run ./cmd/fund status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&analysisFile, "analysis", "", "analysis config file (default: ANALYSIS_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setup loads env config, analysis config and the logger
// 모든 서브커맨드가 같은 초기화 경로를 사용함
func setup() (*config.Config, *config.Analysis, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
		cfg.LogFormat = "console"
	}

	path := cfg.AnalysisPath
	if analysisFile != "" {
		path = analysisFile
	}

	analysis, err := config.LoadAnalysis(path)
	if err != nil {
		// 파일이 없으면 기존 워크플로우 기본값 (12/24/36/60개월) 사용
		if analysisFile == "" && errors.Is(err, os.ErrNotExist) {
			analysis = config.DefaultAnalysis()
		} else {
			return nil, nil, nil, fmt.Errorf("load analysis config: %w", err)
		}
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.Env)
	return cfg, analysis, log, nil
}
