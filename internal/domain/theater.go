package domain

type Theater struct {
	ID      string
	Name    string
	Address string
}
