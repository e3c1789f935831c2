// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/cvonk/OPNpool-sub000/pkg/bus"
	"github.com/cvonk/OPNpool-sub000/pkg/network"
	"github.com/cvonk/OPNpool-sub000/pkg/poolstate"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive view of the pool state",
	Long: `Run the bridge with a terminal dashboard showing the live pool state:
temperatures, thermostats, circuits, pump telemetry and chlorinator status.

Keys 1-9 toggle the corresponding circuit; q quits.`,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type busMsgEvent network.Message

type stateEvent poolstate.State

type dashboardModel struct {
	task     *bus.Task
	state    poolstate.State
	recent   []string
	statusLn string
}

func waitBusMsg(task *bus.Task) tea.Cmd {
	return func() tea.Msg {
		return busMsgEvent(<-task.Messages())
	}
}

func waitState(task *bus.Task) tea.Cmd {
	return func() tea.Msg {
		return stateEvent(<-task.StateUpdates())
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(waitBusMsg(m.task), waitState(m.task))
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			idx := int(key[0] - '1')
			m.statusLn = m.toggleCircuit(idx)
			return m, nil
		}
	case busMsgEvent:
		if network.Message(msg).Typ != network.MsgIgnore {
			m.recent = append(m.recent, network.Message(msg).String())
			if len(m.recent) > 8 {
				m.recent = m.recent[len(m.recent)-8:]
			}
		}
		return m, waitBusMsg(m.task)
	case stateEvent:
		m.state = poolstate.State(msg)
		return m, waitState(m.task)
	}
	return m, nil
}

func (m dashboardModel) toggleCircuit(idx int) string {
	current := m.state.Circuits[idx].Active
	value := uint8(1)
	if current.Valid && current.Value {
		value = 0
	}
	err := m.task.SubmitCommand(network.Message{
		Typ:     network.MsgCtrlCircuitSet,
		Payload: &network.CtrlCircuitSet{CircuitPlus1: uint8(idx) + 1, Value: value},
	})
	if err != nil {
		return fmt.Sprintf("submit failed: %v", err)
	}
	state := "on"
	if value == 0 {
		state = "off"
	}
	return fmt.Sprintf("queued %s -> %s", network.Circuit(idx), state)
}

func (m dashboardModel) View() string {
	var sb strings.Builder
	s := &m.state

	sb.WriteString(titleStyle.Render("OPNpool"))
	if s.System.Addr.Valid {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  controller %s", s.System.Addr.Value)))
	} else {
		sb.WriteString(dimStyle.Render("  waiting for controller broadcast"))
	}
	if s.System.TOD.Time.Valid {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  %02d:%02d", s.System.TOD.Time.Hour, s.System.TOD.Time.Minute)))
	}
	sb.WriteString("\n\n")

	sb.WriteString(renderTemps(s))
	sb.WriteString("\n")
	sb.WriteString(renderCircuits(s))
	sb.WriteString("\n")
	sb.WriteString(renderPumpsAndChlor(s))
	sb.WriteString("\n")

	if len(m.recent) > 0 {
		sb.WriteString(labelStyle.Render("recent traffic") + "\n")
		for _, line := range m.recent {
			sb.WriteString(dimStyle.Render("  "+line) + "\n")
		}
	}
	if m.statusLn != "" {
		sb.WriteString("\n" + valueStyle.Render(m.statusLn) + "\n")
	}
	sb.WriteString(dimStyle.Render("\n1-9 toggle circuit · q quit\n"))
	return sb.String()
}

func renderTemps(s *poolstate.State) string {
	var parts []string
	if s.Temps[poolstate.TempWater].Valid {
		parts = append(parts, fmt.Sprintf("water %d°F", s.Temps[poolstate.TempWater].Value))
	}
	if s.Temps[poolstate.TempAir].Valid {
		parts = append(parts, fmt.Sprintf("air %d°F", s.Temps[poolstate.TempAir].Value))
	}
	for i, name := range []string{"pool", "spa"} {
		th := s.Thermos[i]
		if th.SetPoint.Valid {
			heat := ""
			if th.Heating.Valid && th.Heating.Value {
				heat = " heating"
			}
			parts = append(parts, fmt.Sprintf("%s set %d°F (%s)%s", name, th.SetPoint.Value, th.HeatSrc.Value, heat))
		}
	}
	if len(parts) == 0 {
		return dimStyle.Render("no temperature data yet")
	}
	return valueStyle.Render(strings.Join(parts, "  ·  "))
}

func renderCircuits(s *poolstate.State) string {
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "circuit", Width: 10},
		{Title: "state", Width: 7},
		{Title: "schedule", Width: 14},
	}
	var rows []table.Row
	for i := range s.Circuits {
		state := "-"
		if s.Circuits[i].Active.Valid {
			if s.Circuits[i].Active.Value {
				state = "on"
			} else {
				state = "off"
			}
		}
		if s.Circuits[i].Delay.Valid && s.Circuits[i].Delay.Value {
			state += " (delay)"
		}
		sched := "-"
		if sc := s.Scheds[i]; sc.Valid {
			sched = fmt.Sprintf("%02d:%02d-%02d:%02d", sc.Start/60, sc.Start%60, sc.Stop/60, sc.Stop%60)
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			network.Circuit(i).String(),
			state,
			sched,
		})
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)),
	)
	return tbl.View()
}

func renderPumpsAndChlor(s *poolstate.State) string {
	var sb strings.Builder
	for i := range s.Pumps {
		p := &s.Pumps[i]
		if !p.Running.Valid {
			continue
		}
		state := "off"
		if p.Running.Value {
			state = activeStyle.Render("on")
		}
		sb.WriteString(fmt.Sprintf("%s %s", labelStyle.Render(fmt.Sprintf("pump%d", i)), state))
		if p.Power.Valid {
			sb.WriteString(valueStyle.Render(fmt.Sprintf("  %dW %drpm %dgpm",
				p.Power.Value, p.Speed.Value, p.Flow.Value)))
		}
		sb.WriteString("\n")
	}
	if s.Chlor.Salt.Valid {
		sb.WriteString(labelStyle.Render("chlorinator"))
		sb.WriteString(valueStyle.Render(fmt.Sprintf("  %dppm", s.Chlor.Salt.Value)))
		if s.Chlor.Level.Valid {
			sb.WriteString(valueStyle.Render(fmt.Sprintf("  %d%%", s.Chlor.Level.Value)))
		}
		if s.Chlor.Status.Valid {
			sb.WriteString(dimStyle.Render("  " + s.Chlor.Status.Value.String()))
		}
		if s.Chlor.Name.Valid {
			sb.WriteString(dimStyle.Render("  " + s.Chlor.Name.Value))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	trx, _, err := OpenTransceiver(cfg)
	if err != nil {
		return err
	}
	defer trx.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	task := bus.New(cfg, trx)
	go task.Run(ctx)

	model := dashboardModel{task: task}
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
