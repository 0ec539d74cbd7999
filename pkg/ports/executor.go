package ports

import "github.com/aretw0/pageflow/pkg/domain"

// ExecutorFactory resolves the executor for a handler method's signature.
type ExecutorFactory interface {
	Create(method *domain.HandlerMethod) (domain.HandlerExecutor, error)
}
