package v1

import (
	"github.com/andreyxaxa/Print-Detection/internal/usecase"
	"github.com/andreyxaxa/Print-Detection/pkg/logger"
)

type V1 struct {
	cards  usecase.CardUseCase
	keys   usecase.AccessKeyUseCase
	opts   Options
	logger logger.Interface
}
