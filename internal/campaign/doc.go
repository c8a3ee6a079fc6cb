// Package campaign contiene las reglas puras de campañas: armado y validación del payload,
// cálculo de la próxima ocurrencia y render del HTML por destinatario.
// No hace IO; services y delivery lo usan antes de tocar la base o el SMTP.
package campaign
