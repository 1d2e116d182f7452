// Package application contém os casos de uso do gateway de autenticação
// e do limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Engine.Forward valida a key, aplica a autorização por papel e só então
// chama o backend; toda recusa volta como um erro sentinela de domain.
package application
