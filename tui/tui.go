package tui

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/jrwynneiii/ofdmtx/config"
	"github.com/jrwynneiii/ofdmtx/tx"
	"github.com/navidys/tvxwidgets"
	"github.com/rivo/tview"
)

var LogOut *tview.TextView

// StartUI runs the transmitter monitor until the user quits or the app
// is stopped from outside. rfHz is the effective RF center when a radio
// sink is attached; pass haveRF=false for a file sink.
func StartUI(transmitter *tx.Transmitter, rfHz float64, haveRF bool, tuiConf config.TuiConf) {
	refresh := tuiConf.RefreshMs
	if refresh <= 0 {
		refresh = 500
	}

	app := tview.NewApplication()

	LogOut = tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	paramData := newParamTableData(transmitter.Params, transmitter.Plan, rfHz, haveRF)
	statusData := &StatusTableData{}
	paramTable := tview.NewTable().SetContent(paramData)
	statusTable := tview.NewTable().SetContent(statusData)

	spectrumPlot := tvxwidgets.NewPlot()
	spectrumPlot.SetLineColor([]tcell.Color{tcell.ColorLightSkyBlue})
	spectrumPlot.SetMarker(tvxwidgets.PlotMarkerBraille)

	levelGauge := tvxwidgets.NewUtilModeGauge()
	levelGauge.SetLabel("Output level:    ")
	levelGauge.SetLabelColor(tcell.ColorLightSkyBlue)
	levelGauge.SetWarnPercentage(80)
	levelGauge.SetCritPercentage(95)
	levelGauge.SetEmptyColor(tcell.ColorBlack)
	levelGauge.SetBorder(false)

	paprGauge := tvxwidgets.NewUtilModeGauge()
	paprGauge.SetLabel("PAPR (0-12 dB):  ")
	paprGauge.SetLabelColor(tcell.ColorLightSkyBlue)
	paprGauge.SetWarnPercentage(70)
	paprGauge.SetCritPercentage(90)
	paprGauge.SetEmptyColor(tcell.ColorBlack)
	paprGauge.SetBorder(false)

	gaugeBox := tview.NewFlex()
	gaugeBox.SetDirection(tview.FlexRow)
	gaugeBox.AddItem(levelGauge, 0, 1, false)
	gaugeBox.AddItem(paprGauge, 0, 1, false)
	gaugeBox.SetTitle("Output Stats")
	gaugeBox.SetBorder(true)

	LogOut.SetChangedFunc(func() {
		LogOut.ScrollToEnd()
		app.Draw()
	})

	LogOut.SetBorder(true).SetTitle("Log Output")
	log.SetOutput(LogOut)
	paramTable.SetSelectable(false, false).SetBorder(true).SetTitle("Waveform Parameters")
	statusTable.SetSelectable(false, false).SetBorder(false)

	txStatus := tview.NewFlex().SetDirection(tview.FlexRow)
	txStatus.AddItem(tview.NewBox(), 0, 1, false)
	txStatus.AddItem(statusTable, 0, 1, false)
	txStatus.AddItem(tview.NewBox(), 0, 1, false)
	txStatus.SetBorder(true)
	txStatus.SetTitle("TX Status")

	spectrumPlot.SetBorder(true)
	spectrumPlot.SetTitle("Spectrum")

	page := tview.NewFlex().SetDirection(tview.FlexColumn)

	leftCol := tview.NewFlex().SetDirection(tview.FlexRow)
	leftCol.AddItem(paramTable, 0, 3, false)
	leftCol.AddItem(txStatus, 0, 1, false)

	rightCol := tview.NewFlex().SetDirection(tview.FlexRow)
	rightCol.AddItem(gaugeBox, 0, 2, false)
	if transmitter.DoFFT {
		rightCol.AddItem(spectrumPlot, 0, 3, false)
	}
	if tuiConf.EnableLogOutput {
		rightCol.AddItem(LogOut, 0, 2, false)
	}

	page.AddItem(leftCol, 0, 2, false)
	page.AddItem(rightCol, 0, 5, false)

	//Update Stats
	go func() {
		for {
			transmitter.FFTMutex.RLock()
			overallTXStats.ChunksSent = transmitter.ChunksSent
			overallTXStats.RMS = transmitter.CurrentRMS
			overallTXStats.PAPR = transmitter.CurrentPAPR
			var bins []float64
			if len(transmitter.CurrentFFT) > 0 {
				bins = make([]float64, len(transmitter.CurrentFFT))
				copy(bins, transmitter.CurrentFFT)
			}
			transmitter.FFTMutex.RUnlock()

			level := 0.0
			if target := transmitter.Params.TargetRMS; target > 0 {
				level = overallTXStats.RMS / target * 100
			}
			if level > 100 {
				level = 100
			}
			levelGauge.SetValue(level)

			papr := overallTXStats.PAPR / 12 * 100
			if papr < 0 {
				papr = 0
			}
			if papr > 100 {
				papr = 100
			}
			paprGauge.SetValue(papr)

			if bins != nil {
				spectrumPlot.SetData([][]float64{bins})
			}

			app.Draw()
			time.Sleep(time.Duration(refresh) * time.Millisecond)
		}
	}()

	if err := app.SetRoot(page, true).EnableMouse(true).Run(); err != nil {
		log.Fatalf("Could not start UI: %v", err)
	}
}
