package service

import (
	"kalshi_bot/internal/helper"
	"kalshi_bot/internal/models"
	"kalshi_bot/pkg/logger"
)

// Resolver — сущность → конкретный инструмент. Правила жёсткие,
// никакого fuzzy: промах по инструменту — это реальные деньги
// на чужом рынке. Любая неоднозначность = "не нашли".
type Resolver struct{}

func New() *Resolver { return &Resolver{} }

const minLastNameLen = 4

// Resolve — точный нормализованный матч, иначе совпадение имени И фамилии
// (фамилия не короче 4 символов, чтобы короткие токены не коллизили).
// Два кандидата на один запрос — отказ, не угадывание. Рынки с направлением
// сюда не попадают вообще: без известного направления ставить на
// "entity → destination" нельзя, это другой вопрос.
func (r *Resolver) Resolve(entity string, instruments []models.Instrument) (*models.Instrument, bool) {
	ne := helper.Normalize(entity)
	if ne == "" {
		return nil, false
	}

	// 1. точное совпадение
	var exact *models.Instrument
	for i := range instruments {
		if !instruments[i].Tradable() || instruments[i].Destination != "" {
			continue
		}
		if helper.Normalize(instruments[i].Entity) == ne {
			if exact != nil {
				logger.Warn("resolver: %q матчится точно в несколько инструментов, отказ", entity)
				return nil, false
			}
			exact = &instruments[i]
		}
	}
	if exact != nil {
		return exact, true
	}

	// 2. имя + фамилия, оба должны совпасть
	first, last, ok := helper.SplitName(ne)
	if !ok || len(last) < minLastNameLen {
		return nil, false
	}

	var found *models.Instrument
	for i := range instruments {
		if !instruments[i].Tradable() || instruments[i].Destination != "" {
			continue
		}
		cf, cl, ok := helper.SplitName(helper.Normalize(instruments[i].Entity))
		if !ok {
			continue
		}
		if cf == first && cl == last {
			if found != nil {
				logger.Warn("resolver: %q матчится по имени+фамилии в несколько инструментов, отказ", entity)
				return nil, false
			}
			found = &instruments[i]
		}
	}
	if found == nil {
		return nil, false
	}
	return found, true
}

// ResolveWithDestination — мульти-леговый рынок "entity → destination".
// Направление прогоняется через словарь алиасов; неизвестный алиас — отказ.
func (r *Resolver) ResolveWithDestination(entity, destination string, instruments []models.Instrument) (*models.Instrument, bool) {
	nd := helper.Normalize(destination)
	canon, ok := CanonicalDestination(nd)
	if !ok {
		logger.Info("resolver: неизвестное направление %q, fail closed", destination)
		return nil, false
	}

	ne := helper.Normalize(entity)
	var found *models.Instrument
	for i := range instruments {
		if !instruments[i].Tradable() {
			continue
		}
		if helper.Normalize(instruments[i].Entity) != ne {
			continue
		}
		if helper.Normalize(instruments[i].Destination) != canon {
			continue
		}
		if found != nil {
			return nil, false
		}
		found = &instruments[i]
	}
	if found == nil {
		return nil, false
	}
	return found, true
}
