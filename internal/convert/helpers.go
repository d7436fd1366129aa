package convert

import (
	"fmt"
	"strconv"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/kubeadapt/kubeadapt-dashboard/internal/quantity"
)

// quantityString returns the serialized form of a resource from a
// ResourceList, or "" when the resource is absent.
//
// Quantities written with a decimal exponent ("1e9") and decimal SI values
// whose canonical form uses the lowercase kilo suffix ("64k") are rendered as
// plain integers (or millis for fractional values) so they stay inside the
// grammar the quantity parsers accept.
func quantityString(rl corev1.ResourceList, name corev1.ResourceName) string {
	q, ok := rl[name]
	if !ok {
		return ""
	}
	switch q.Format {
	case resource.DecimalExponent:
		return plainQuantity(q)
	case resource.DecimalSI:
		if s := q.String(); strings.HasSuffix(s, "k") {
			return plainQuantity(q)
		}
	}
	return q.String()
}

func plainQuantity(q resource.Quantity) string {
	if q.MilliValue()%1000 != 0 {
		return strconv.FormatInt(q.MilliValue(), 10) + "m"
	}
	return strconv.FormatInt(q.Value(), 10)
}

// resourceFigure names one resource of a ResourceList, how to parse it, and
// where to add the result.
type resourceFigure struct {
	dst   *int64
	parse func(corev1.ResourceList, corev1.ResourceName) (int64, error)
	rl    corev1.ResourceList
	name  corev1.ResourceName
}

// accumulate parses every figure and adds it to its destination. It stops at
// the first parse failure.
func accumulate(figures []resourceFigure) error {
	for _, f := range figures {
		v, err := f.parse(f.rl, f.name)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst += v
	}
	return nil
}

// cpuMillicores reads a CPU resource as millicores.
func cpuMillicores(rl corev1.ResourceList, name corev1.ResourceName) (int64, error) {
	return quantity.ParseCPU(quantityString(rl, name))
}

// byteValue reads a memory or storage resource as bytes.
func byteValue(rl corev1.ResourceList, name corev1.ResourceName) (int64, error) {
	return quantity.Parse(quantityString(rl, name))
}

// countValue reads an extended resource (e.g. GPUs) as a plain count.
func countValue(rl corev1.ResourceList, name corev1.ResourceName) (int64, error) {
	return quantity.ParseCount(quantityString(rl, name))
}

// copyLabels returns a non-nil copy of labels so callers never share maps
// with the informer cache and JSON renders {} instead of null.
func copyLabels(labels map[string]string) map[string]string {
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}
