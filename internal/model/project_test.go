package model

import (
	"testing"
	"time"
)

func processWith(statuses ...TaskStatus) *Process {
	p := NewProcess("工程")
	for _, s := range statuses {
		p.AddTask(NewTask("t", s))
	}
	return p
}

func TestProcessProgress(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		statuses []TaskStatus
		want     float64
	}{
		{"no tasks", nil, 0},
		{"half", []TaskStatus{TaskCompleted, TaskNotStarted}, 50},
		{"impossible excluded", []TaskStatus{TaskCompleted, TaskImpossible}, 100},
		{"all impossible", []TaskStatus{TaskImpossible, TaskImpossible}, 0},
		{"in progress counts as open", []TaskStatus{TaskInProgress, TaskCompleted, TaskCompleted, TaskNotStarted}, 50},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := processWith(tc.statuses...).Progress(); got != tc.want {
				t.Fatalf("progress=%v want %v", got, tc.want)
			}
		})
	}
}

func TestProcessSetHoursClampsNegative(t *testing.T) {
	t.Parallel()

	p := NewProcess("x")
	p.SetHours(-3, 5)
	if p.EstimatedHours != 0 || p.ActualHours != 5 {
		t.Fatalf("hours: %v %v", p.EstimatedHours, p.ActualHours)
	}
}

func TestProjectAggregation(t *testing.T) {
	t.Parallel()

	d := func(day int) *time.Time {
		v := time.Date(2024, 4, day, 0, 0, 0, 0, time.UTC)
		return &v
	}

	a := processWith(TaskCompleted)
	a.SetDates(d(3), d(10))
	b := processWith(TaskNotStarted)
	b.SetDates(d(1), nil)
	c := processWith(TaskCompleted, TaskCompleted)
	c.SetDates(nil, d(20))

	ph1 := NewPhase("設計")
	ph1.AddProcess(a)
	ph1.AddProcess(b)
	ph2 := NewPhase("実装")
	ph2.AddProcess(c)

	p := NewProject("受注管理", "")
	p.AddPhase(ph1)
	p.AddPhase(ph2)

	if got := ph1.Progress(); got != 50 {
		t.Fatalf("phase progress=%v", got)
	}
	if got := p.Progress(); got != 75 {
		t.Fatalf("project progress=%v", got)
	}
	if !p.StartDate().Equal(*d(1)) || !p.EndDate().Equal(*d(20)) {
		t.Fatalf("dates: %v %v", p.StartDate(), p.EndDate())
	}
	phases, processes, tasks := p.Counts()
	if phases != 2 || processes != 3 || tasks != 4 {
		t.Fatalf("counts: %d %d %d", phases, processes, tasks)
	}

	sum := p.Summary()
	if sum.Status != ProjectInProgress || sum.ProjectID != p.ID || sum.TaskCount != 4 {
		t.Fatalf("summary: %+v", sum)
	}
}

func TestProjectStatus(t *testing.T) {
	t.Parallel()

	empty := NewProject("空", "")
	if empty.DetermineStatus() != ProjectNotStarted {
		t.Fatalf("empty project: %s", empty.DetermineStatus())
	}

	ph := NewPhase("p")
	ph.AddProcess(processWith(TaskCompleted, TaskImpossible))
	done := NewProject("完了", "")
	done.AddPhase(ph)
	done.RefreshStatus()
	if done.Status != ProjectCompleted {
		t.Fatalf("completed project: %s", done.Status)
	}

	done.SetStatus(ProjectOnHold, true)
	done.RefreshStatus()
	if done.Status != ProjectOnHold {
		t.Fatalf("manual status overwritten: %s", done.Status)
	}
	done.ReleaseManualStatus()
	if done.Status != ProjectCompleted || done.StatusManual {
		t.Fatalf("release: %s %v", done.Status, done.StatusManual)
	}
}

func TestParseTaskStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want TaskStatus
		ok   bool
	}{
		{"完了", TaskCompleted, true},
		{" Done ", TaskCompleted, true},
		{"in progress", TaskInProgress, true},
		{"対応不能", TaskImpossible, true},
		{"N/A", TaskImpossible, true},
		{"未着手", TaskNotStarted, true},
		{"保留", TaskNotStarted, false},
	}
	for _, tc := range cases {
		got, ok := ParseTaskStatus(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseTaskStatus(%q) = %s,%v", tc.in, got, ok)
		}
	}
}

func TestNewTaskDefaultsStatus(t *testing.T) {
	t.Parallel()

	task := NewTask("x", "")
	if task.Status != TaskNotStarted || task.ID == "" {
		t.Fatalf("task: %+v", task)
	}
}
