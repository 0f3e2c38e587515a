package controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"geocollect/internal/config"
	"geocollect/internal/models"
)

func TestListCustomFieldsScoping(t *testing.T) {
	router, _ := setupTest(t)

	scope := "marchand"
	other := "producteur"
	require.NoError(t, config.DB.Create(&models.CustomField{
		FieldKey: "surface", FieldLabel: "Surface cultivée", FieldType: "number",
	}).Error)
	require.NoError(t, config.DB.Create(&models.CustomField{
		FieldKey: "etal", FieldLabel: "Type d'étal", FieldType: "text", Dytael: &scope,
	}).Error)
	require.NoError(t, config.DB.Create(&models.CustomField{
		FieldKey: "semences", FieldLabel: "Semences", FieldType: "text", Dytael: &other,
	}).Error)

	// Without a scope only global fields come back.
	w := getJSON(router, "/api/custom-fields", "")
	require.Equal(t, http.StatusOK, w.Code)
	var fields []models.CustomField
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fields))
	require.Len(t, fields, 1)
	require.Equal(t, "surface", fields[0].FieldKey)

	// With a scope, global plus matching scoped fields.
	w = getJSON(router, "/api/custom-fields?dytael=marchand", "")
	require.Equal(t, http.StatusOK, w.Code)
	fields = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fields))
	require.Len(t, fields, 2)
}

func TestCreateCustomFieldRules(t *testing.T) {
	router, _ := setupTest(t)
	admin := createUser(t, "admin@x.com", "admin", true)
	editor := createUser(t, "editor@x.com", "editor", true)

	body := map[string]any{"field_key": "surface", "field_label": "Surface", "required": true}

	// Admin-only.
	require.Equal(t, http.StatusForbidden, postJSON(router, "/api/custom-fields", body, tokenFor(t, editor)).Code)
	require.Equal(t, http.StatusUnauthorized, postJSON(router, "/api/custom-fields", body, "").Code)

	w := postJSON(router, "/api/custom-fields", body, tokenFor(t, admin))
	require.Equal(t, http.StatusCreated, w.Code)

	var field models.CustomField
	require.NoError(t, config.DB.Where("field_key = ?", "surface").First(&field).Error)
	require.Equal(t, "text", field.FieldType) // defaulted
	require.True(t, field.Required)
	require.Nil(t, field.Dytael)

	// Same key in the same (global) scope is refused.
	require.Equal(t, http.StatusBadRequest, postJSON(router, "/api/custom-fields", body, tokenFor(t, admin)).Code)

	// The same key under a different scope is fine.
	scoped := map[string]any{"field_key": "surface", "field_label": "Surface", "dytael": "marchand"}
	require.Equal(t, http.StatusCreated, postJSON(router, "/api/custom-fields", scoped, tokenFor(t, admin)).Code)

	// Key and label are required; the type must be known.
	require.Equal(t, http.StatusBadRequest,
		postJSON(router, "/api/custom-fields", map[string]any{"field_label": "Sans clé"}, tokenFor(t, admin)).Code)
	require.Equal(t, http.StatusBadRequest,
		postJSON(router, "/api/custom-fields", map[string]any{
			"field_key": "x", "field_label": "X", "field_type": "checkbox",
		}, tokenFor(t, admin)).Code)
}
