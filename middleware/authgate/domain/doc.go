// Package domain define contratos e tipos de domínio do gateway de autenticação:
// sessões (API keys), rastreamento de abuso por IP, autorização por papel (role),
// o backend protegido e a coleta de estatísticas.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar regras de negócio
// de detalhes de infraestrutura.
package domain
