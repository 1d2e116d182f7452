// Package authgate fornece os adapters HTTP (net/http + chi) do gateway de autenticação.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (emitir key, repassar registro, validar e repassar chamadas)
//   - infra: implementações concretas (sessões, abuso por IP, permissões, cliente do backend, estatísticas)
//   - authgate (este pacote): rotas HTTP + extração do IP do cliente + tradução de erros para status/corpo
//
// Fluxo no gateway:
//
//  1. Extrai o IP do cliente (RemoteAddr ou X-Forwarded-For)
//  2. Chama a camada application (Authenticate, Register ou Forward)
//  3. Se recusado, responde 403 (IP bloqueado), 502 (backend fora) ou {"error": ...}
//  4. Se permitido, devolve status e corpo do backend sem alterações
//
// O binário cmd/gateway lê a configuração (YAML + variáveis AUTHGATE_*) e monta tudo.
package authgate
