package core

// FrameAverageCount is the number of frames averaged into FrameTime.
const FrameAverageCount uint8 = 30

// FrameMetrics keeps a rolling frame-time average and a frames-per-second
// count. Not safe for concurrent use.
type FrameMetrics struct {
	frameAvgCounter    uint8
	msTimes            [FrameAverageCount]float64
	msAvg              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
}

// Update records one frame that took frameElapsed seconds.
func (m *FrameMetrics) Update(frameElapsed float64) {
	// Calculate frame ms average
	frameMS := frameElapsed * 1000.0
	m.msTimes[m.frameAvgCounter] = frameMS
	if m.frameAvgCounter == FrameAverageCount-1 {
		m.msAvg = 0
		for _, t := range m.msTimes {
			m.msAvg += t
		}
		m.msAvg /= float64(FrameAverageCount)
	}
	m.frameAvgCounter++
	m.frameAvgCounter %= FrameAverageCount

	// Calculate frames per second.
	m.accumulatedFrameMS += frameMS
	m.frames++
	if m.accumulatedFrameMS >= 1000 {
		m.fps = float64(m.frames)
		m.accumulatedFrameMS -= 1000
		m.frames = 0
	}
}

// FPS returns the frame count of the last full second.
func (m *FrameMetrics) FPS() float64 {
	return m.fps
}

// FrameTime returns the average frame time in milliseconds over the last
// FrameAverageCount frames. Zero until that many frames were recorded.
func (m *FrameMetrics) FrameTime() float64 {
	return m.msAvg
}

func (m *FrameMetrics) Frame() (float64, float64) {
	return m.fps, m.msAvg
}
