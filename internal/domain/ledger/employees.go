package ledger

import "strings"

func (s *Store) AddEmployee(in NewEmployee) (Employee, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Employee{}, invalid("name", "is required")
	}
	if in.BasicSalary < 0 {
		return Employee{}, invalid("basic_salary", "must not be negative")
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = RoleEmployee
	}
	e := &Employee{
		ID:          s.newID(),
		Name:        name,
		Role:        role,
		Department:  strings.TrimSpace(in.Department),
		Email:       strings.TrimSpace(in.Email),
		Active:      true,
		BasicSalary: in.BasicSalary,
	}
	s.employees[e.ID] = e
	s.employeeOrder = append(s.employeeOrder, e.ID)
	return e.clone(), nil
}

func (s *Store) UpdateEmployee(id string, upd EmployeeUpdate) (Employee, error) {
	e, ok := s.employees[id]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return Employee{}, invalid("name", "must not be empty")
	}
	if upd.BasicSalary != nil && *upd.BasicSalary < 0 {
		return Employee{}, invalid("basic_salary", "must not be negative")
	}
	if upd.Points != nil && *upd.Points < 0 {
		return Employee{}, invalid("points", "must not be negative")
	}

	if upd.Name != nil {
		e.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Role != nil {
		e.Role = strings.TrimSpace(*upd.Role)
	}
	if upd.Department != nil {
		e.Department = strings.TrimSpace(*upd.Department)
	}
	if upd.Email != nil {
		e.Email = strings.TrimSpace(*upd.Email)
	}
	if upd.Active != nil {
		e.Active = *upd.Active
	}
	if upd.BasicSalary != nil {
		e.BasicSalary = *upd.BasicSalary
	}
	if upd.Points != nil {
		e.Points = *upd.Points
	}
	return e.clone(), nil
}

// AddProgressNote appends a timestamped note to the employee's progress log.
func (s *Store) AddProgressNote(employeeID, note string) (Note, error) {
	e, ok := s.employees[employeeID]
	if !ok {
		return Note{}, ErrEmployeeNotFound
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return Note{}, invalid("note", "is required")
	}
	n := Note{At: s.now(), Text: note}
	e.ProgressNotes = append(e.ProgressNotes, n)
	return n, nil
}

// Roster is a lightweight projection used by listings and reports.
type Roster struct {
	ID          string
	Name        string
	Role        string
	Department  string
	BasicSalary float64
	Active      bool
}

func (s *Store) Roster() []Roster {
	out := make([]Roster, 0, len(s.employeeOrder))
	for _, id := range s.employeeOrder {
		e := s.employees[id]
		out = append(out, Roster{ID: e.ID, Name: e.Name, Role: e.Role, Department: e.Department, BasicSalary: e.BasicSalary, Active: e.Active})
	}
	return out
}
