package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kdduha/audioflow/internal/export"
	"github.com/kdduha/audioflow/internal/media"
	"github.com/kdduha/audioflow/internal/models"
	"github.com/rs/zerolog"
)

type Runner interface {
	Run(ctx context.Context, file models.MediaFile, notify func(models.Status)) (*models.DiagramResult, error)
}

// Converter writes the diagram and a summary document for each recording
// into outputDir.
type Converter struct {
	runner    Runner
	outputDir string
	logger    zerolog.Logger
}

func NewConverter(runner Runner, outputDir string, logger zerolog.Logger) (*Converter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Converter{
		runner:    runner,
		outputDir: outputDir,
		logger:    logger,
	}, nil
}

// Handle matches Handler.
func (c *Converter) Handle(ctx context.Context, path string) error {
	file := media.FromPath(path)
	result, err := c.runner.Run(ctx, file, func(s models.Status) {
		c.logger.Debug().Str("file", file.Name).Str("status", string(s)).Msg("status")
	})
	if err != nil {
		return err
	}

	diagramPath := filepath.Join(c.outputDir, result.FileName)
	if err := os.WriteFile(diagramPath, []byte(result.XML), 0o644); err != nil {
		return fmt.Errorf("write diagram: %w", err)
	}

	summaryPath := filepath.Join(c.outputDir, export.FileName(result.FileName))
	if err := export.SummaryDocx(result.FileName, result.Summary, summaryPath); err != nil {
		c.logger.Warn().Err(err).Str("file", summaryPath).Msg("failed to write summary document")
	}

	c.logger.Info().Str("diagram", diagramPath).Str("summary", summaryPath).Msg("recording converted")
	return nil
}
