// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - SessionStore: API keys em memória com expiração e limpeza preguiçosa
//   - AbuseTracker: janela deslizante de falhas por IP + lista de bloqueio
//   - PermissionTable: tabela (endpoint, método) -> papéis, somente leitura
//   - HTTPBackend: cliente net/http para o backend protegido
//   - MemoryStatsStore, RedisStatsStore, PrometheusStats: destinos de estatísticas
//   - ChanPool: semáforo simples para limite de concorrência
//   - Janitor: agendador (robfig/cron) das varreduras periódicas
package infra
