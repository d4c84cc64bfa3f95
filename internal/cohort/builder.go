// Package cohort assembles expression, sample-metadata, and mutation
// inputs into heatmap-ready data for a single cancer cohort.
package cohort

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/oncoviz/tcga-explore/internal/annotate"
	"github.com/oncoviz/tcga-explore/internal/barcode"
	"github.com/oncoviz/tcga-explore/internal/clinical"
	"github.com/oncoviz/tcga-explore/internal/expr"
	"github.com/oncoviz/tcga-explore/internal/maf"
)

// HeatmapData is the prepared input for an external heatmap renderer:
// a normalized matrix of the most variable genes over the retained
// samples, plus per-sample mutation-status annotations.
type HeatmapData struct {
	Matrix      *expr.Matrix
	Samples     []annotate.SampleRecord
	Annotations *annotate.Table
}

// Builder prepares cohort heatmap data.
type Builder struct {
	logger   *zap.Logger
	workers  int
	patients map[string]*clinical.Patient
}

// NewBuilder creates a builder with default settings.
func NewBuilder() *Builder {
	return &Builder{logger: zap.NewNop()}
}

// SetLogger sets the logger for progress and skip messages.
func (b *Builder) SetLogger(l *zap.Logger) {
	b.logger = l
}

// SetWorkers sets the annotation worker count (0 = number of CPUs).
func (b *Builder) SetWorkers(n int) {
	b.workers = n
}

// SetClinical attaches per-patient clinical records. When set, Build
// joins primary_diagnosis, tumor_grade, and vital_status into each
// retained sample's metadata, keyed by the patient ID derived from the
// sample barcode.
func (b *Builder) SetClinical(patients map[string]*clinical.Patient) {
	b.patients = patients
}

// Build restricts the cohort to samples present in both the count
// matrix and the sample sheet (tumor samples only when tumorOnly is
// set), normalizes counts to log2-CPM, keeps the topN most variable
// genes, and annotates every retained sample with mutation presence
// for the queried genes.
func (b *Builder) Build(m *expr.Matrix, samples []annotate.SampleRecord, calls []maf.MutationCall, genes []string, topN int, tumorOnly bool) (*HeatmapData, error) {
	inMatrix := make(map[string]struct{}, len(m.Samples))
	for _, s := range m.Samples {
		inMatrix[s] = struct{}{}
	}

	var kept []annotate.SampleRecord
	for _, s := range samples {
		if _, ok := inMatrix[s.ID]; !ok {
			b.logger.Warn("sample missing from expression matrix, skipping",
				zap.String("sample", s.ID))
			continue
		}
		if tumorOnly {
			code, err := barcode.SampleTypeCode(s.Barcode)
			if err != nil {
				return nil, fmt.Errorf("sample %s: %w", s.ID, err)
			}
			if !barcode.IsTumor(code) {
				b.logger.Debug("non-tumor sample excluded",
					zap.String("sample", s.ID),
					zap.String("sample_type", code))
				continue
			}
		}
		if b.patients != nil {
			if err := b.joinClinical(&s); err != nil {
				return nil, err
			}
		}
		kept = append(kept, s)
	}

	if len(kept) == 0 {
		return nil, annotate.ErrEmptyInput
	}

	b.logger.Info("cohort selected",
		zap.Int("samples_in", len(samples)),
		zap.Int("samples_kept", len(kept)))

	norm, err := m.Log2CPM()
	if err != nil {
		return nil, fmt.Errorf("normalize counts: %w", err)
	}

	// Restrict to the retained samples before ranking so excluded
	// samples cannot influence which genes count as variable.
	sampleIDs := make([]string, len(kept))
	for i := range kept {
		sampleIDs[i] = kept[i].ID
	}
	norm, err = norm.Subset(norm.Genes, sampleIDs)
	if err != nil {
		return nil, fmt.Errorf("subset matrix: %w", err)
	}

	ranked, err := norm.TopVariableGenes(topN)
	if err != nil {
		return nil, fmt.Errorf("rank genes: %w", err)
	}

	topGenes := make([]string, len(ranked))
	for i, gv := range ranked {
		topGenes[i] = gv.Gene
	}

	sub, err := norm.Subset(topGenes, norm.Samples)
	if err != nil {
		return nil, fmt.Errorf("subset genes: %w", err)
	}

	table, err := annotate.BuildTable(kept, calls, genes, b.workers)
	if err != nil {
		return nil, fmt.Errorf("annotate samples: %w", err)
	}

	return &HeatmapData{
		Matrix:      sub,
		Samples:     kept,
		Annotations: table,
	}, nil
}

// joinClinical copies the clinical fields for the sample's patient into
// the sample metadata. Samples without a clinical record are kept and
// logged.
func (b *Builder) joinClinical(s *annotate.SampleRecord) error {
	pid, err := barcode.ExtractPatientID(s.Barcode)
	if err != nil {
		return fmt.Errorf("sample %s: %w", s.ID, err)
	}
	p, ok := b.patients[pid]
	if !ok {
		b.logger.Warn("no clinical record for patient",
			zap.String("sample", s.ID),
			zap.String("patient", pid))
		return nil
	}

	meta := make(map[string]string, len(s.Meta)+3)
	for k, v := range s.Meta {
		meta[k] = v
	}
	meta["primary_diagnosis"] = p.PrimaryDiagnosis
	meta["tumor_grade"] = p.Grade
	meta["vital_status"] = p.VitalStatus
	s.Meta = meta
	return nil
}
