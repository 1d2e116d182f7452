package infra

import (
	"time"

	"auth-gateway/middleware/authgate/domain"
)

// SystemClock é o relógio de parede usado em produção.
var SystemClock domain.Clock = domain.ClockFunc(time.Now)
