package audio

// DefaultSampleRate — рабочая частота пайплайна. Все сегменты
// приводятся к ней до сборки трека (моно, 16 бит).
const DefaultSampleRate = 44100

// Segment — это фрагмент звука: моно PCM 16 бит.
type Segment struct {
	Samples    []int16
	SampleRate int
}

// Duration возвращает длительность сегмента в секундах.
func (s *Segment) Duration() float64 {
	if s == nil || s.SampleRate == 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}
