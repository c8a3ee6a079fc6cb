// Package repository define las entidades y los contratos de persistencia.
//
// Las interfaces son independientes del almacenamiento; la implementación
// concreta vive en internal/store/pg. Los tests de services usan fakes en memoria.
//
//	Services / Controllers
//	        │
//	        ▼
//	domain/repository (interfaces)
//	        │
//	        ▼
//	store/pg (pgx)
//
// Convenciones:
//   - WebsiteID se pasa explícitamente en todo método scoped a un website
//   - Context siempre es el primer parámetro
//   - Errores de dominio están en errors.go
package repository
