package model

// Column is an ordered bucket of tasks. Its name is the status of every
// task it holds.
type Column struct {
	Name  string `json:"name"`
	Tasks []Task `json:"tasks"`
}

func (c Column) Clone() Column {
	out := c
	out.Tasks = make([]Task, len(c.Tasks))
	for i, t := range c.Tasks {
		out.Tasks[i] = t.Clone()
	}
	return out
}
