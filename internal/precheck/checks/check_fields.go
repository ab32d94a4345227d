package checks

type FieldsCheck struct{}

func NewFieldsCheck() *FieldsCheck {
	return &FieldsCheck{}
}

func (c *FieldsCheck) Name() string {
	return "fieldsCheck"
}

func (c *FieldsCheck) Type() CheckType {
	return FieldsFilled
}

func (c *FieldsCheck) Message() string {
	return "Please fill in both name and image URL"
}

// Check 名称和图片地址都不能为空
func (c *FieldsCheck) Check(input *Input) bool {
	if input == nil {
		return false
	}
	return input.Form.Name != "" && input.Form.ImageURL != ""
}
