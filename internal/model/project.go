package model

import "time"

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "未着手"
	ProjectInProgress ProjectStatus = "進行中"
	ProjectCompleted  ProjectStatus = "完了"
	ProjectCancelled  ProjectStatus = "中止"
	ProjectOnHold     ProjectStatus = "保留"
)

// Process 工序，进度由所属任务推导，不单独存储
type Process struct {
	Entity
	Assignee       string     `json:"assignee,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	EstimatedHours float64    `json:"estimatedHours"`
	ActualHours    float64    `json:"actualHours"`
	Tasks          []*Task    `json:"tasks"`
}

// NewProcess 创建工序
func NewProcess(name string) *Process {
	return &Process{Entity: newEntity(name), Tasks: []*Task{}}
}

// AddTask 追加任务
func (p *Process) AddTask(t *Task) {
	p.Tasks = append(p.Tasks, t)
	p.touch()
}

// SetHours 工时不允许为负
func (p *Process) SetHours(estimated, actual float64) {
	p.EstimatedHours = max(0, estimated)
	p.ActualHours = max(0, actual)
	p.touch()
}

// SetDates nil 表示未设置
func (p *Process) SetDates(start, end *time.Time) {
	p.StartDate = start
	p.EndDate = end
	p.touch()
}

// Progress 完成数 / (总数 - 对応不能数) × 100
func (p *Process) Progress() float64 {
	completed, impossible := 0, 0
	for _, t := range p.Tasks {
		switch t.Status {
		case TaskCompleted:
			completed++
		case TaskImpossible:
			impossible++
		}
	}
	valid := len(p.Tasks) - impossible
	if valid <= 0 {
		return 0
	}
	return float64(completed) / float64(valid) * 100
}

// Phase 阶段
type Phase struct {
	Entity
	Processes []*Process `json:"processes"`
}

// NewPhase 创建阶段
func NewPhase(name string) *Phase {
	return &Phase{Entity: newEntity(name), Processes: []*Process{}}
}

// AddProcess 追加工序
func (ph *Phase) AddProcess(p *Process) {
	ph.Processes = append(ph.Processes, p)
	ph.touch()
}

// Progress 工序进度的平均值
func (ph *Phase) Progress() float64 {
	if len(ph.Processes) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range ph.Processes {
		total += p.Progress()
	}
	return total / float64(len(ph.Processes))
}

// StartDate 工序中最早的开始日期
func (ph *Phase) StartDate() *time.Time {
	var out *time.Time
	for _, p := range ph.Processes {
		if p.StartDate != nil && (out == nil || p.StartDate.Before(*out)) {
			out = p.StartDate
		}
	}
	return out
}

// EndDate 工序中最晚的结束日期
func (ph *Phase) EndDate() *time.Time {
	var out *time.Time
	for _, p := range ph.Processes {
		if p.EndDate != nil && (out == nil || p.EndDate.After(*out)) {
			out = p.EndDate
		}
	}
	return out
}

// Project 项目聚合根
type Project struct {
	Entity
	Status       ProjectStatus `json:"status"`
	StatusManual bool          `json:"statusManual"`
	Phases       []*Phase      `json:"phases"`
}

// NewProject 创建项目
func NewProject(name, description string) *Project {
	p := &Project{Entity: newEntity(name), Status: ProjectNotStarted, Phases: []*Phase{}}
	p.Description = description
	return p
}

// AddPhase 追加阶段
func (p *Project) AddPhase(ph *Phase) {
	p.Phases = append(p.Phases, ph)
	p.touch()
}

// Progress 阶段进度的平均值
func (p *Project) Progress() float64 {
	if len(p.Phases) == 0 {
		return 0
	}
	total := 0.0
	for _, ph := range p.Phases {
		total += ph.Progress()
	}
	return total / float64(len(p.Phases))
}

// SetStatus 手动设置状态后不再自动推导
func (p *Project) SetStatus(status ProjectStatus, manual bool) {
	p.Status = status
	p.StatusManual = manual
	p.touch()
}

// ReleaseManualStatus 恢复自动推导
func (p *Project) ReleaseManualStatus() {
	p.StatusManual = false
	p.Status = p.DetermineStatus()
}

// DetermineStatus 根据进度推导状态
func (p *Project) DetermineStatus() ProjectStatus {
	if p.StatusManual {
		return p.Status
	}
	if len(p.Phases) > 0 && p.Progress() >= 100 {
		return ProjectCompleted
	}
	for _, ph := range p.Phases {
		for _, proc := range ph.Processes {
			if proc.Progress() > 0 {
				return ProjectInProgress
			}
		}
	}
	return ProjectNotStarted
}

// RefreshStatus 非手动状态时按进度刷新
func (p *Project) RefreshStatus() {
	if !p.StatusManual {
		p.Status = p.DetermineStatus()
	}
}

// StartDate 项目最早开始日期
func (p *Project) StartDate() *time.Time {
	var out *time.Time
	for _, ph := range p.Phases {
		if d := ph.StartDate(); d != nil && (out == nil || d.Before(*out)) {
			out = d
		}
	}
	return out
}

// EndDate 项目最晚结束日期
func (p *Project) EndDate() *time.Time {
	var out *time.Time
	for _, ph := range p.Phases {
		if d := ph.EndDate(); d != nil && (out == nil || d.After(*out)) {
			out = d
		}
	}
	return out
}

// Counts 各层级数量
func (p *Project) Counts() (phases, processes, tasks int) {
	for _, ph := range p.Phases {
		phases++
		for _, proc := range ph.Processes {
			processes++
			tasks += len(proc.Tasks)
		}
	}
	return phases, processes, tasks
}

// ProjectSummary 项目概要（列表展示用）
type ProjectSummary struct {
	ProjectID    string        `json:"projectId" yaml:"projectId"`
	Name         string        `json:"name" yaml:"name"`
	Status       ProjectStatus `json:"status" yaml:"status"`
	Progress     float64       `json:"progress" yaml:"progress"`
	PhaseCount   int           `json:"phaseCount" yaml:"phaseCount"`
	ProcessCount int           `json:"processCount" yaml:"processCount"`
	TaskCount    int           `json:"taskCount" yaml:"taskCount"`
	StartDate    *time.Time    `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate      *time.Time    `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	UpdatedAt    time.Time     `json:"updatedAt" yaml:"updatedAt"`
}

// Summary 生成概要
func (p *Project) Summary() ProjectSummary {
	phases, processes, tasks := p.Counts()
	return ProjectSummary{
		ProjectID:    p.ID,
		Name:         p.Name,
		Status:       p.DetermineStatus(),
		Progress:     p.Progress(),
		PhaseCount:   phases,
		ProcessCount: processes,
		TaskCount:    tasks,
		StartDate:    p.StartDate(),
		EndDate:      p.EndDate(),
		UpdatedAt:    p.UpdatedAt,
	}
}
