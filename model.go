package reviewsense

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

// ErrFeatureShape means a Feature does not fit the model: wrong length or an
// id outside the embedding table.
var ErrFeatureShape = errors.New("feature does not match model input")

// An EmbeddingModel is a pretrained bag-of-embeddings network: the embeddings
// of every non-padding id are averaged, then a dense layer and softmax give
// the two class scores.
//
// It is read-only after construction and safe for concurrent use.
type EmbeddingModel struct {
	Name string

	inputLength int
	embeddings  *mat.Dense    // vocabulary size x dimension
	weights     *mat.Dense    // 2 x dimension
	bias        *mat.VecDense // 2
}

// modelMeta is stored in meta.gob next to the weight files.
type modelMeta struct {
	Name        string
	InputLength int
}

// NewEmbeddingModel builds a model from raw weights. embeddings has one row per
// vocabulary id (row 0 belongs to PadID and is never read); weights has one row
// per class.
func NewEmbeddingModel(name string, inputLength int, embeddings, weights [][]float64, bias []float64) (*EmbeddingModel, error) {
	if inputLength <= 0 {
		return nil, fmt.Errorf("input length must be positive, got %d", inputLength)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, errors.New("embedding table is empty")
	}
	dim := len(embeddings[0])

	emb, err := denseFromRows(embeddings, dim)
	if err != nil {
		return nil, fmt.Errorf("embeddings: %w", err)
	}
	if len(weights) != len(Prediction{}) {
		return nil, fmt.Errorf("weights: want %d rows, got %d", len(Prediction{}), len(weights))
	}
	w, err := denseFromRows(weights, dim)
	if err != nil {
		return nil, fmt.Errorf("weights: %w", err)
	}
	if len(bias) != len(Prediction{}) {
		return nil, fmt.Errorf("bias: want %d values, got %d", len(Prediction{}), len(bias))
	}

	return &EmbeddingModel{
		Name:        name,
		inputLength: inputLength,
		embeddings:  emb,
		weights:     w,
		bias:        mat.NewVecDense(len(bias), append([]float64(nil), bias...)),
	}, nil
}

func denseFromRows(rows [][]float64, cols int) (*mat.Dense, error) {
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

// InputLength returns the Feature length the model accepts.
func (m *EmbeddingModel) InputLength() int {
	return m.inputLength
}

// Score implements Scorer.
func (m *EmbeddingModel) Score(ctx context.Context, feature Feature) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	if len(feature) != m.inputLength {
		return Prediction{}, fmt.Errorf("%w: length %d, want %d", ErrFeatureShape, len(feature), m.inputLength)
	}

	vocabSize, dim := m.embeddings.Dims()
	mean := mat.NewVecDense(dim, nil)
	count := 0
	for pos, id := range feature {
		if id == PadID {
			continue
		}
		if id < 0 || id >= vocabSize {
			return Prediction{}, fmt.Errorf("%w: id %d at %d outside [0, %d)", ErrFeatureShape, id, pos, vocabSize)
		}
		mean.AddVec(mean, m.embeddings.RowView(id))
		count++
	}
	if count > 0 {
		mean.ScaleVec(1/float64(count), mean)
	}

	logits := mat.NewVecDense(len(Prediction{}), nil)
	logits.MulVec(m.weights, mean)
	logits.AddVec(logits, m.bias)

	return softmax(logits), nil
}

func softmax(logits *mat.VecDense) Prediction {
	maxLogit := math.Max(logits.AtVec(0), logits.AtVec(1))

	var p Prediction
	sum := 0.0
	for i := range p {
		p[i] = math.Exp(logits.AtVec(i) - maxLogit)
		sum += p[i]
	}
	for i := range p {
		p[i] /= sum
	}
	return p
}

// ModelFromDisk loads an EmbeddingModel from the user-provided location.
func ModelFromDisk(path string) (*EmbeddingModel, error) {
	model, err := ModelFromFS(os.DirFS(path))
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = filepath.Join(path, loadErr.Path)
		}
		return nil, err
	}
	if model.Name == "" {
		model.Name = filepath.Base(path)
	}
	return model, nil
}

// ModelFromFS loads an EmbeddingModel stored at the root of filesys.
func ModelFromFS(filesys fs.FS) (*EmbeddingModel, error) {
	var (
		meta       modelMeta
		embeddings [][]float64
		weights    [][]float64
		bias       []float64
	)

	assets := []struct {
		name string
		dest any
	}{
		{"meta.gob", &meta},
		{"embeddings.gob", &embeddings},
		{"weights.gob", &weights},
		{"bias.gob", &bias},
	}
	for _, asset := range assets {
		if err := decodeAsset(filesys, asset.name, asset.dest); err != nil {
			return nil, &LoadError{Path: asset.name, Err: err}
		}
	}

	model, err := NewEmbeddingModel(meta.Name, meta.InputLength, embeddings, weights, bias)
	if err != nil {
		return nil, &LoadError{Path: ".", Err: err}
	}
	return model, nil
}

func decodeAsset(filesys fs.FS, name string, dest any) error {
	file, err := filesys.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()
	return gob.NewDecoder(file).Decode(dest)
}

// Write saves the model to the user-provided location.
func (m *EmbeddingModel) Write(path string) error {
	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		return err
	}

	assets := []struct {
		name  string
		value any
	}{
		{"meta.gob", modelMeta{Name: m.Name, InputLength: m.inputLength}},
		{"embeddings.gob", denseRows(m.embeddings)},
		{"weights.gob", denseRows(m.weights)},
		{"bias.gob", append([]float64(nil), m.bias.RawVector().Data...)},
	}
	for _, asset := range assets {
		if err := encodeAsset(filepath.Join(path, asset.name), asset.value); err != nil {
			return err
		}
	}
	return nil
}

func encodeAsset(path string, value any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(file).Encode(value); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func denseRows(d *mat.Dense) [][]float64 {
	r, _ := d.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = append([]float64(nil), d.RawRowView(i)...)
	}
	return rows
}
