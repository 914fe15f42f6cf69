package mlmodel

import (
	"fmt"
	"strconv"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/knn"
)

// KNN wraps golearn's k-nearest-neighbours classifier behind the common
// Classifier interface. golearn models are not serializable, so the wrapper
// persists the training matrix and refits on load; probabilities are hard
// 0/1 votes since golearn's KNN exposes no calibrated probability.
type KNN struct {
	K        int         `json:"k"`
	TrainX   [][]float64 `json:"train_x"`
	TrainY   []int       `json:"train_y"`
	Features []string    `json:"feature_names"`

	cls *knn.KNNClassifier
}

// NewKNN creates an untrained KNN classifier; k defaults to 5.
func NewKNN(k int) *KNN {
	if k <= 0 {
		k = 5
	}
	return &KNN{K: k}
}

// Fit stores the training data and fits the underlying golearn model.
func (c *KNN) Fit(X [][]float64, y []int, featureNames []string) error {
	if err := checkFitInput(X, y, featureNames); err != nil {
		return err
	}

	c.TrainX = X
	c.TrainY = y
	c.Features = append([]string{}, featureNames...)
	return c.restore()
}

// restore rebuilds the golearn classifier from the stored training data.
// Called by Fit and after deserialization.
func (c *KNN) restore() error {
	if len(c.TrainX) == 0 {
		return fmt.Errorf("model not trained")
	}

	inst, err := c.buildInstances(c.TrainX, c.TrainY)
	if err != nil {
		return err
	}

	cls := knn.NewKnnClassifier("euclidean", "linear", c.K)
	if err := cls.Fit(inst); err != nil {
		return fmt.Errorf("golearn knn fit failed: %w", err)
	}
	c.cls = cls
	return nil
}

// buildInstances packs a feature matrix into a golearn DenseInstances grid
// with one float attribute per feature and a categorical class attribute.
func (c *KNN) buildInstances(X [][]float64, y []int) (*base.DenseInstances, error) {
	inst := base.NewDenseInstances()

	specs := make([]base.AttributeSpec, len(c.Features))
	attrs := make([]base.Attribute, len(c.Features))
	for i, name := range c.Features {
		attr := base.NewFloatAttribute(name)
		attrs[i] = attr
		specs[i] = inst.AddAttribute(attr)
	}

	classAttr := base.NewCategoricalAttribute()
	classAttr.SetName("is_canceled")
	classSpec := inst.AddAttribute(classAttr)
	if err := inst.AddClassAttribute(classAttr); err != nil {
		return nil, fmt.Errorf("failed to set class attribute: %w", err)
	}

	if err := inst.Extend(len(X)); err != nil {
		return nil, fmt.Errorf("failed to size instance grid: %w", err)
	}

	for row, vec := range X {
		if len(vec) != len(c.Features) {
			return nil, fmt.Errorf("row %d: expected %d features, got %d", row, len(c.Features), len(vec))
		}
		for j, v := range vec {
			inst.Set(specs[j], row, attrs[j].GetSysValFromString(strconv.FormatFloat(v, 'g', -1, 64)))
		}
		label := 0
		if y != nil {
			label = y[row]
		}
		inst.Set(classSpec, row, classAttr.GetSysValFromString(strconv.Itoa(label)))
	}
	return inst, nil
}

// Predict returns 0/1 indicators from the nearest-neighbour vote.
func (c *KNN) Predict(X [][]float64) ([]int, error) {
	if c.cls == nil {
		if err := c.restore(); err != nil {
			return nil, err
		}
	}

	inst, err := c.buildInstances(X, nil)
	if err != nil {
		return nil, err
	}

	out, err := c.cls.Predict(inst)
	if err != nil {
		return nil, fmt.Errorf("golearn knn prediction failed: %w", err)
	}

	preds := make([]int, len(X))
	for i := range X {
		label := base.GetClass(out, i)
		v, err := strconv.Atoi(label)
		if err != nil {
			return nil, fmt.Errorf("row %d: unexpected predicted class %q", i, label)
		}
		preds[i] = v
	}
	return preds, nil
}

// PredictProba returns hard 0/1 probabilities derived from Predict.
func (c *KNN) PredictProba(X [][]float64) ([]float64, error) {
	preds, err := c.Predict(X)
	if err != nil {
		return nil, err
	}
	probs := make([]float64, len(preds))
	for i, p := range preds {
		probs[i] = float64(p)
	}
	return probs, nil
}

// FeatureNames returns the ordered training-time feature columns.
func (c *KNN) FeatureNames() []string {
	return c.Features
}

// Type returns the model type identifier.
func (c *KNN) Type() string {
	return TypeKNN
}
