package domain

import "errors"

var (
	// ErrBlocked: o IP do chamador está sob bloqueio ativo.
	ErrBlocked = errors.New("ip blocked")
	// ErrMissingKey: a requisição não trouxe API key.
	ErrMissingKey = errors.New("key not provided")
	// ErrInvalidKey: a API key não existe ou expirou.
	ErrInvalidKey = errors.New("invalid key")
	// ErrNotAllowed: o papel da sessão não pode invocar o endpoint/método.
	ErrNotAllowed = errors.New("not allowed")
	// ErrInvalidCredentials: o backend recusou a autenticação.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrBackendUnavailable: falha de transporte ao falar com o backend.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrOverloaded: nenhuma vaga de concorrência livre dentro do prazo.
	ErrOverloaded = errors.New("gateway overloaded")
	// ErrKeyGeneration: não foi possível gerar uma API key única.
	ErrKeyGeneration = errors.New("key generation failed")
)
