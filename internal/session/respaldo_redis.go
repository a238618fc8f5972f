package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	respaldoPrefix = "sesion:respaldo:"
	respaldoTTL    = 24 * time.Hour
)

// RespaldoRedis keeps the last known-good session snapshot in Redis so a
// transient failure of the authoritative store does not log everyone out.
type RespaldoRedis struct {
	rdb *redis.Client
}

func NewRespaldoRedis(rdb *redis.Client) *RespaldoRedis {
	return &RespaldoRedis{rdb: rdb}
}

func (r *RespaldoRedis) Guardar(ctx context.Context, s *Sesion) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, respaldoPrefix+s.UsuarioID.String(), data, respaldoTTL).Err()
}

func (r *RespaldoRedis) Recuperar(ctx context.Context, usuarioID uuid.UUID) (*Sesion, error) {
	data, err := r.rdb.Get(ctx, respaldoPrefix+usuarioID.String()).Bytes()
	if err != nil {
		return nil, err
	}
	var s Sesion
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RespaldoRedis) Eliminar(ctx context.Context, usuarioID uuid.UUID) error {
	return r.rdb.Del(ctx, respaldoPrefix+usuarioID.String()).Err()
}
