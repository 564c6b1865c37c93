package tui

import (
	"fmt"

	"github.com/jrwynneiii/ofdmtx/waveform"
	"github.com/rivo/tview"
)

type ParamTableData struct {
	tview.TableContentReadOnly
	params *waveform.Params
	plan   *waveform.SubcarrierPlan
	rows   [][2]string
}

type TXStats struct {
	ChunksSent int
	RMS        float64
	PAPR       float64
}

var overallTXStats = TXStats{}

func newParamTableData(p *waveform.Params, plan *waveform.SubcarrierPlan, rfHz float64, haveRF bool) *ParamTableData {
	d := &ParamTableData{params: p, plan: plan}
	payload := len(plan.DataBins)
	d.rows = [][2]string{
		{"Modulation:", p.Scheme.String()},
		{"FFT size:", fmt.Sprintf("%d", p.FFTSize)},
		{"Cyclic prefix:", fmt.Sprintf("%d (%.3f of N)", p.CPLen, p.CPFraction)},
		{"Used tones:", fmt.Sprintf("%d (payload=%d, pilots=%d)", plan.UsedTones(), payload, len(plan.PilotBins))},
		{"Edge guard:", fmt.Sprintf("%d", p.EdgeGuard)},
		{"Subcarrier spacing:", fmt.Sprintf("%.3f kHz", p.SubcarrierSpacing/1e3)},
		{"Sample rate:", fmt.Sprintf("%.6f Msps", p.SampleRate/1e6)},
		{"Symbol period:", fmt.Sprintf("%.3f ms (%.3f ms w/ CP)", p.SymbolPeriod*1e3, p.TotalSymbolPeriod*1e3)},
		{"Raw bit rate:", fmt.Sprintf("%.3f kb/s", p.RawBitRate(payload)/1e3)},
		{"Net bit rate:", fmt.Sprintf("%.3f kb/s", p.NetBitRate(payload)/1e3)},
		{"Chunk:", fmt.Sprintf("%d symbols (%d samples)", p.ChunkSymbols, p.ChunkSamples())},
	}
	if haveRF {
		d.rows = append(d.rows, [2]string{"RF center:", fmt.Sprintf("%.6f MHz", rfHz/1e6)})
	}
	if p.FreqOffset != 0 {
		d.rows = append(d.rows, [2]string{"BB offset:", fmt.Sprintf("%.3f kHz", p.FreqOffset/1e3)})
	}
	return d
}

func (d *ParamTableData) GetRowCount() int {
	return len(d.rows)
}

func (d *ParamTableData) GetColumnCount() int {
	return 2
}

func (d *ParamTableData) GetCell(row, column int) *tview.TableCell {
	if row < 0 || row >= len(d.rows) {
		return tview.NewTableCell("ERROR")
	}
	if column == 0 {
		return tview.NewTableCell(fmt.Sprintf("[lightskyblue]%s", d.rows[row][0]))
	}
	return tview.NewTableCell(fmt.Sprintf("[white]%s", d.rows[row][1]))
}

type StatusTableData struct {
	tview.TableContentReadOnly
}

func (s *StatusTableData) GetRowCount() int {
	return 3
}

func (s *StatusTableData) GetColumnCount() int {
	return 2
}

func (s *StatusTableData) GetCell(row, column int) *tview.TableCell {
	switch row {
	case 0:
		if column == 0 {
			return tview.NewTableCell("Chunks sent:")
		}
		return tview.NewTableCell(fmt.Sprintf("[green]%d", overallTXStats.ChunksSent))
	case 1:
		if column == 0 {
			return tview.NewTableCell("Output RMS:")
		}
		return tview.NewTableCell(fmt.Sprintf("%.4f", overallTXStats.RMS))
	case 2:
		if column == 0 {
			return tview.NewTableCell("PAPR:")
		}
		return tview.NewTableCell(fmt.Sprintf("%.2f dB", overallTXStats.PAPR))
	}
	return tview.NewTableCell("ERROR")
}
