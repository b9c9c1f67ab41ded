package ta

import "math"

// Series functions return one value per input bar. Positions without enough
// history are NaN; callers map NaN to null when serializing.

func SMASeries(closes []float64, n int) []float64 {
	out := nanSeries(len(closes))
	if n <= 0 {
		return out
	}
	sum := 0.0
	for i, v := range closes {
		sum += v
		if i >= n {
			sum -= closes[i-n]
		}
		if i >= n-1 {
			out[i] = sum / float64(n)
		}
	}
	return out
}

// EMASeries seeds with the SMA of the first n values, then applies the
// standard 2/(n+1) smoothing.
func EMASeries(closes []float64, n int) []float64 {
	out := nanSeries(len(closes))
	if n <= 0 || len(closes) < n {
		return out
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += closes[i]
	}
	ema := sum / float64(n)
	out[n-1] = ema
	k := 2.0 / float64(n+1)
	for i := n; i < len(closes); i++ {
		ema = (closes[i]-ema)*k + ema
		out[i] = ema
	}
	return out
}

// RSISeries uses Wilder smoothing. The first defined value is at index
// period; zero average loss gives RSI 100.
func RSISeries(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}
	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// MACDSeries returns the MACD line, signal line and histogram for the
// standard fast/slow/signal EMA scheme.
func MACDSeries(closes []float64, fast, slow, signal int) (macd, sig, hist []float64) {
	macd = nanSeries(len(closes))
	sig = nanSeries(len(closes))
	hist = nanSeries(len(closes))

	fastEMA := EMASeries(closes, fast)
	slowEMA := EMASeries(closes, slow)
	for i := range closes {
		if !math.IsNaN(fastEMA[i]) && !math.IsNaN(slowEMA[i]) {
			macd[i] = fastEMA[i] - slowEMA[i]
		}
	}

	// Signal line is an EMA over the defined region of the MACD line.
	start := slow - 1
	if start >= len(closes) {
		return macd, sig, hist
	}
	sigPart := EMASeries(macd[start:], signal)
	for i, v := range sigPart {
		if math.IsNaN(v) {
			continue
		}
		sig[start+i] = v
		hist[start+i] = macd[start+i] - v
	}
	return macd, sig, hist
}

// BollingerSeries computes the n-period SMA band with k population standard
// deviations.
func BollingerSeries(closes []float64, n int, k float64) (upper, mid, lower []float64) {
	upper = nanSeries(len(closes))
	lower = nanSeries(len(closes))
	mid = SMASeries(closes, n)
	if n <= 0 {
		return upper, mid, lower
	}
	for i := n - 1; i < len(closes); i++ {
		m := mid[i]
		s := 0.0
		for j := i - n + 1; j <= i; j++ {
			d := closes[j] - m
			s += d * d
		}
		sd := math.Sqrt(s / float64(n))
		upper[i] = m + k*sd
		lower[i] = m - k*sd
	}
	return upper, mid, lower
}

func nanSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
