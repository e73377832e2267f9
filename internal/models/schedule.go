package models

// ClassSession is one tutoring session on the roster. StudentName and
// TeacherName are denormalized display copies taken at creation time; they
// are not kept in sync with later User.Name edits.
type ClassSession struct {
	ID          string `db:"id" json:"id"`
	StudentID   string `db:"student_id" json:"student_id"`
	TeacherID   string `db:"teacher_id" json:"teacher_id"`
	StudentName string `db:"student_name" json:"student_name"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	Subject     string `db:"subject" json:"subject"`
	Day         string `db:"day" json:"day"`
	Date        string `db:"date" json:"date"`
	Time        string `db:"time" json:"time"`
}
