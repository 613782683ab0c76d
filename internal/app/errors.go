package app

import "fmt"

type DomainError struct {
	Status int
	Code   string
	Detail string
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func domainError(status int, code, detail string) *DomainError {
	return &DomainError{Status: status, Code: code, Detail: detail}
}
