package ml

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/spacesedan/sentiserve/internal/models"
)

type Metrics = models.EvaluationMetrics

const probabilityEpsilon = 1e-15

// Evaluate scores probabilities against labels at the 0.5 threshold.
// Rates that are undefined for the given data are reported as 0, and AUC as
// 0.5 when only one class is present.
func Evaluate(probabilities []float64, labels []bool) Metrics {
	var m Metrics
	n := len(probabilities)
	if n == 0 || n != len(labels) {
		m.AUC = 0.5
		return m
	}

	var tp, fp, tn, fn float64
	var logLoss float64
	for i, p := range probabilities {
		predicted := p > 0.5
		switch {
		case predicted && labels[i]:
			tp++
		case predicted && !labels[i]:
			fp++
		case !predicted && !labels[i]:
			tn++
		default:
			fn++
		}

		clipped := math.Min(math.Max(p, probabilityEpsilon), 1-probabilityEpsilon)
		if labels[i] {
			logLoss -= math.Log(clipped)
		} else {
			logLoss -= math.Log(1 - clipped)
		}
	}

	m.Accuracy = (tp + tn) / float64(n)
	m.Precision = safeDiv(tp, tp+fp)
	m.Recall = safeDiv(tp, tp+fn)
	m.F1 = safeDiv(2*m.Precision*m.Recall, m.Precision+m.Recall)
	m.LogLoss = logLoss / float64(n)
	m.AUC = AUC(probabilities, labels)
	return m
}

// AUC is the area under the ROC curve computed with gonum's stat.ROC.
func AUC(scores []float64, labels []bool) float64 {
	var positives, negatives int
	for _, l := range labels {
		if l {
			positives++
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return 0.5
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	y := make([]float64, len(scores))
	classes := make([]bool, len(scores))
	for i, idx := range order {
		y[i] = scores[idx]
		classes[i] = labels[idx]
	}

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	auc := integrate.Trapezoidal(fpr, tpr)
	return math.Min(math.Max(auc, 0), 1)
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
