package handlers

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/asakaida/datastore/internal/repositories"
	"github.com/asakaida/datastore/internal/services"
	"github.com/asakaida/datastore/internal/services/manipulation"
	"github.com/asakaida/datastore/internal/services/query"
)

// toStatus maps service errors onto gRPC status codes
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, manipulation.ErrInvalidArgument),
		errors.Is(err, manipulation.ErrUnknownRelation),
		errors.Is(err, repositories.ErrUnknownType),
		errors.Is(err, query.ErrUnknownStrategy),
		errors.Is(err, services.ErrUnsupportedPagination):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, manipulation.ErrReplaceNotAllowed),
		errors.Is(err, services.ErrManipulationUnsupported),
		errors.Is(err, services.ErrWriteRejected):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Errorf(codes.Internal, "internal error: %v", err)
	}
}
