package session

import (
	"io"
)

type memorySaver struct {
	calls int
	name  string
	body  string
}

func (m *memorySaver) Save(filename, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.calls++
	m.name = filename
	m.body = string(data)
	return nil
}
