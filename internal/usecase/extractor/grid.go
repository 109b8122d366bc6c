package extractor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const earthRadiusKm = 6371.0

// grid is a row-major nj x ni view over values.
type grid struct {
	nj, ni int
	v      []float64
}

func (g grid) at(j, i int) float64 {
	return g.v[j*g.ni+i]
}

// reflect maps an out-of-range index using half-sample symmetric reflection (d c b a | a b c d).
func reflect(idx, n int) int {
	if n == 1 {
		return 0
	}
	for idx < 0 || idx >= n {
		if idx < 0 {
			idx = -idx - 1
		}
		if idx >= n {
			idx = 2*n - idx - 1
		}
	}
	return idx
}

func gaussianKernel(sigma float64) []float64 {
	radius := int(4*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	for k := -radius; k <= radius; k++ {
		kernel[k+radius] = math.Exp(-0.5 * float64(k*k) / (sigma * sigma))
	}
	floats.Scale(1/floats.Sum(kernel), kernel)
	return kernel
}

// gaussianFilter smooths g with a separable Gaussian truncated at 4 sigma.
func gaussianFilter(g grid, sigma float64) grid {
	if sigma <= 0 {
		return grid{nj: g.nj, ni: g.ni, v: append([]float64(nil), g.v...)}
	}

	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	rows := make([]float64, len(g.v))
	for j := 0; j < g.nj; j++ {
		for i := 0; i < g.ni; i++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				sum += kernel[k+radius] * g.at(j, reflect(i+k, g.ni))
			}
			rows[j*g.ni+i] = sum
		}
	}

	tmp := grid{nj: g.nj, ni: g.ni, v: rows}
	out := make([]float64, len(g.v))
	for j := 0; j < g.nj; j++ {
		for i := 0; i < g.ni; i++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				sum += kernel[k+radius] * tmp.at(reflect(j+k, g.nj), i)
			}
			out[j*g.ni+i] = sum
		}
	}
	return grid{nj: g.nj, ni: g.ni, v: out}
}

type cell struct {
	j, i int
}

// localExtrema returns interior cells equal to the max (high) or min (low) of their neighbourhood.
func localExtrema(g grid, neighborhood int, high bool) []cell {
	offsets := [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	if neighborhood == 8 {
		offsets = append(offsets, [2]int{-1, -1}, [2]int{-1, 1}, [2]int{1, -1}, [2]int{1, 1})
	}

	var result []cell
	for j := 1; j < g.nj-1; j++ {
		for i := 1; i < g.ni-1; i++ {
			p := g.at(j, i)
			extreme := true
			for _, o := range offsets {
				n := g.at(j+o[0], i+o[1])
				if (high && n > p) || (!high && n < p) {
					extreme = false
					break
				}
			}
			if extreme {
				result = append(result, cell{j: j, i: i})
			}
		}
	}
	return result
}

// window copies the clipped (2r+1)x(2r+1) block centred on c.
func window(g grid, c cell, r int) grid {
	j0, j1 := max(0, c.j-r), min(g.nj, c.j+r+1)
	i0, i1 := max(0, c.i-r), min(g.ni, c.i+r+1)

	w := grid{nj: j1 - j0, ni: i1 - i0}
	for j := j0; j < j1; j++ {
		w.v = append(w.v, g.v[j*g.ni+i0:j*g.ni+i1]...)
	}
	return w
}

// gradient1D uses central differences inside and one-sided differences at the ends.
func gradient1D(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	out[0] = x[1] - x[0]
	out[n-1] = x[n-1] - x[n-2]
	for k := 1; k < n-1; k++ {
		out[k] = (x[k+1] - x[k-1]) / 2
	}
	return out
}

func meanGradientMagnitude(w grid) float64 {
	gy := make([]float64, len(w.v))
	gx := make([]float64, len(w.v))

	for j := 0; j < w.nj; j++ {
		row := gradient1D(w.v[j*w.ni : (j+1)*w.ni])
		copy(gx[j*w.ni:], row)
	}
	col := make([]float64, w.nj)
	for i := 0; i < w.ni; i++ {
		for j := 0; j < w.nj; j++ {
			col[j] = w.at(j, i)
		}
		for j, d := range gradient1D(col) {
			gy[j*w.ni+i] = d
		}
	}

	mags := make([]float64, len(w.v))
	for k := range mags {
		mags[k] = math.Hypot(gx[k], gy[k])
	}
	return floats.Sum(mags) / float64(len(mags))
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := math.Pi / 180
	phi1, phi2 := lat1*toRad, lat2*toRad
	dPhi := (lat2 - lat1) * toRad
	dLambda := (lon2 - lon1) * toRad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) + math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// normalizeLon maps longitudes to [-180, 180).
func normalizeLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

func formatLatLon(lat, lon float64) string {
	ns := "N"
	if lat < 0 {
		ns = "S"
	}
	lon = normalizeLon(lon)
	ew := "E"
	if lon < 0 {
		ew = "W"
	}
	return fmt.Sprintf("%.2f°%s, %.2f°%s", math.Abs(lat), ns, math.Abs(lon), ew)
}

func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
